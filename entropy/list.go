package entropy

import "github.com/coreentropy/ccrng/errs"

// List combines several sources into one, trying each in turn for
// GetSeed and fanning AddEntropy out to all of them.
type List struct {
	Sources []Source
}

// NewList builds a List over sources, tried in the given order.
func NewList(sources ...Source) *List {
	return &List{Sources: sources}
}

// GetSeed tries each source's GetSeed in order, returning the first
// success. If every source fails, GetSeed returns the last error
// wrapped as errs.OutOfEntropy.
func (l *List) GetSeed(out []byte) error {
	var lastErr error
	for _, s := range l.Sources {
		if err := s.GetSeed(out); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		return errs.New(errs.OutOfEntropy, "entropy.List.GetSeed", nil)
	}
	return errs.New(errs.OutOfEntropy, "entropy.List.GetSeed", lastErr)
}

// AddEntropy fans data out to every inner source, returning true if
// any one of them reports seedReady.
func (l *List) AddEntropy(nsamples int, data []byte) bool {
	ready := false
	for _, s := range l.Sources {
		if s.AddEntropy(nsamples, data) {
			ready = true
		}
	}
	return ready
}

// Reset resets every inner source.
func (l *List) Reset() {
	for _, s := range l.Sources {
		s.Reset()
	}
}
