package schedule

import "sync/atomic"

// sticky implements the "once MUST_RESEED, stay MUST_RESEED until
// notified" rule shared by every variant in this package. Embed it in
// a variant's Read/NotifyReseed.
type sticky struct {
	stuck atomic.Bool
}

// apply folds a freshly computed action through the sticky latch: if
// the latch is already set, or action is MustReseed, the latch is
// (re)armed and MustReseed is returned; otherwise the raw action
// passes through unchanged.
func (s *sticky) apply(action Action) Action {
	if action == MustReseed {
		s.stuck.Store(true)
		return MustReseed
	}
	if s.stuck.Load() {
		return MustReseed
	}
	return action
}

// clear releases the latch; call from NotifyReseed.
func (s *sticky) clear() {
	s.stuck.Store(false)
}
