package schedule

// ReseedCounter is satisfied by a DRBG that exposes its internal
// reseed-counter state.
type ReseedCounter interface {
	// ReseedRequired reports whether the DRBG's internal counter has
	// reached its reseed interval.
	ReseedRequired() bool
}

// DrbgCounter borrows a DRBG and mirrors its internal "needs reseed"
// signal as a schedule action: MustReseed once the DRBG reports it,
// else Continue.
type DrbgCounter struct {
	sticky
	drbg ReseedCounter
}

// NewDrbgCounter builds a DrbgCounter schedule borrowing drbg.
func NewDrbgCounter(drbg ReseedCounter) *DrbgCounter {
	return &DrbgCounter{drbg: drbg}
}

func (d *DrbgCounter) Read() Action {
	if d.drbg.ReseedRequired() {
		return d.apply(MustReseed)
	}
	return d.apply(Continue)
}

func (d *DrbgCounter) NotifyReseed() {
	d.clear()
}
