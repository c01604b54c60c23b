package fortuna

// NPools is the fixed number of entropy pools: a design constant, not
// made configurable, since changing it changes the reseed-rate
// geometry. Asserted at Init.
const NPools = 32

// pool holds one Fortuna entropy pool: a running SHA-256 digest of
// everything absorbed into it since its last drain, plus diagnostics.
type pool struct {
	data        [32]byte
	nsamples    uint32
	ndrains     uint64
	nsamplesMax uint32
}

// PoolDiagnostics is the observable, non-secret state of a single pool.
type PoolDiagnostics struct {
	NSamples    uint32
	NDrains     uint64
	NSamplesMax uint32
}

func (p *pool) diagnostics() PoolDiagnostics {
	return PoolDiagnostics{
		NSamples:    p.nsamples,
		NDrains:     p.ndrains,
		NSamplesMax: p.nsamplesMax,
	}
}

func (p *pool) reset() {
	p.data = [32]byte{}
	p.nsamples = 0
	p.nsamplesMax = 0
	p.ndrains = 0
}
