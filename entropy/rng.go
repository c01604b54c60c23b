package entropy

// RNG is the minimal generator contract an RNGSource forwards to —
// satisfied by fortuna.Ctx and cryptorng.Ctx alike, so those layers
// of the stack can be wrapped as a Source for the layer above them.
// drbg.Interface does not satisfy it: its Generate also takes
// additional input.
type RNG interface {
	Generate(n int, out []byte) error
}

// RNGSource adapts an RNG into a Source whose GetSeed simply draws
// len(out) fresh bytes from the wrapped generator. It is not an
// accumulator: AddEntropy is a no-op and Reset does nothing, since the
// wrapped RNG owns its own state.
type RNGSource struct {
	RNG RNG
}

// NewRNGSource wraps rng as a Source.
func NewRNGSource(rng RNG) *RNGSource {
	return &RNGSource{RNG: rng}
}

func (s *RNGSource) GetSeed(out []byte) error {
	return s.RNG.Generate(len(out), out)
}

func (s *RNGSource) AddEntropy(nsamples int, data []byte) bool {
	return false
}

func (s *RNGSource) Reset() {}
