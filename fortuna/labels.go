package fortuna

// Domain-separation labels mixed into the pool-absorb and
// scheduled-reseed digests. Distinct byte strings, never reused for
// any other purpose in this package.
var (
	labelAddEntropy  = [8]byte{0x78, 0x6e, 0x75, 0x70, 0x72, 0x6e, 0x67, 3}
	labelSchedReseed = [8]byte{0x78, 0x6e, 0x75, 0x70, 0x72, 0x6e, 0x67, 2}
)
