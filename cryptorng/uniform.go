package cryptorng

import (
	"encoding/binary"
	"math/bits"

	"github.com/coreentropy/ccrng/errs"
)

// uniformRNG is the minimal generator contract Uniform draws from —
// satisfied by *Ctx itself, and equally by any other layer of the
// stack exposing Generate(n, out) error.
type uniformRNG interface {
	Generate(n int, out []byte) error
}

// Uniform draws a value in [0, bound) from rng without modulo bias,
// via mask-and-reject over a uint64: it draws 8 random bytes, masks
// them down to the smallest power-of-two range covering bound, and
// retries whenever the masked draw falls at or above bound. Grounded
// on corecrypto's crypto_test_rng_uniform.c, which drives ccrng_uniform
// the same way and checks the result with a chi-squared goodness-of-fit
// test. bound == 0 is rejected with errs.Parameter; bound == 1 always
// returns 0 without drawing.
func Uniform(rng uniformRNG, bound uint64) (uint64, error) {
	if bound == 0 {
		return 0, errs.New(errs.Parameter, "cryptorng.Uniform", nil)
	}
	if bound == 1 {
		return 0, nil
	}

	mask := ^uint64(0) >> bits.LeadingZeros64(bound-1)

	var buf [8]byte
	for {
		if err := rng.Generate(len(buf), buf[:]); err != nil {
			return 0, err
		}
		r := binary.BigEndian.Uint64(buf[:]) & mask
		if r < bound {
			return r, nil
		}
	}
}

// Uniform draws a value in [0, bound) from c, serialized under c's
// lock like every other public operation.
func (c *Ctx) Uniform(bound uint64) (uint64, error) {
	return Uniform(c, bound)
}
