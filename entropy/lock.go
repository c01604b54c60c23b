package entropy

import "sync"

// Locked wraps an inner Source with a caller-owned sync.Locker,
// serializing all three operations, for a Source shared across
// goroutines that would otherwise race on its internal accumulator
// state.
type Locked struct {
	L     sync.Locker
	Inner Source
}

// NewLocked wraps inner with l.
func NewLocked(l sync.Locker, inner Source) *Locked {
	return &Locked{L: l, Inner: inner}
}

func (s *Locked) GetSeed(out []byte) error {
	s.L.Lock()
	defer s.L.Unlock()
	return s.Inner.GetSeed(out)
}

func (s *Locked) AddEntropy(nsamples int, data []byte) bool {
	s.L.Lock()
	defer s.L.Unlock()
	return s.Inner.AddEntropy(nsamples, data)
}

func (s *Locked) Reset() {
	s.L.Lock()
	defer s.L.Unlock()
	s.Inner.Reset()
}
