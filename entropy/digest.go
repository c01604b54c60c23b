package entropy

import (
	"hash"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/coreentropy/ccrng/errs"
)

// Digest is an accumulating entropy source backed by a running
// digest: AddEntropy mixes data into the digest and tracks cumulative
// samples; GetSeed finalizes the digest, restarts it, and returns the
// result.
//
// The kernel wiring uses a Digest over SHA-512,
// considering one bit of entropy per input byte, with a 512-bit
// ready threshold matching the 64-byte SHA-512 output — see
// kernel.firstSeedThresholdBits.
type Digest struct {
	mu        sync.Mutex
	newHash   func() hash.Hash
	threshold int // cumulative samples required before seedReady
	h         hash.Hash
	samples   int

	// stretch, when set, makes GetSeed derive len(out) bytes from the
	// finalized digest output via HKDF (extract then expand), so a
	// source whose native digest size differs from the caller's
	// requested seed length can still satisfy GetSeed. stretchLen
	// records the length passed to WithStretch; GetSeed does not
	// consult it. Grounded on
	// other_examples' DataDog-go-secure-sdk csprng_seed.go, which
	// derives DRBG seed material through golang.org/x/crypto/hkdf.
	stretch    bool
	stretchLen int
}

// NewDigest constructs a Digest source. newHash must return a fresh
// hash.Hash each call (e.g. sha256.New or sha512.New). threshold is
// the cumulative sample count that makes GetSeed callers see
// seedReady == true from AddEntropy.
func NewDigest(newHash func() hash.Hash, threshold int) *Digest {
	return &Digest{
		newHash:   newHash,
		threshold: threshold,
		h:         newHash(),
	}
}

// WithStretch configures GetSeed to derive its output from the
// finalized digest via HKDF instead of returning the raw digest
// output, for callers whose out buffer is not the digest size.
// GetSeed then fills all of out, whatever its length; n is stored but
// neither limits nor checks that length.
func (d *Digest) WithStretch(n int) *Digest {
	d.stretch = true
	d.stretchLen = n
	return d
}

// AddEntropy mixes data into the running digest and accumulates
// nsamples toward threshold.
func (d *Digest) AddEntropy(nsamples int, data []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.h.Write(data)
	d.samples += nsamples
	return d.samples >= d.threshold
}

// GetSeed finalizes the current digest into out, then restarts the
// accumulator from scratch. If the digest's native output size
// differs from len(out) and WithStretch was not configured, GetSeed
// returns errs.Config.
func (d *Digest) GetSeed(out []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sum := d.h.Sum(nil)
	d.h = d.newHash()
	d.samples = 0

	if d.stretch {
		kdf := hkdf.New(func() hash.Hash { return d.newHash() }, sum, nil, []byte("ccrng entropy digest stretch"))
		if _, err := io.ReadFull(kdf, out); err != nil {
			return errs.New(errs.Internal, "entropy.Digest.GetSeed", err)
		}
		return nil
	}

	if len(sum) != len(out) {
		return errs.New(errs.Config, "entropy.Digest.GetSeed", nil)
	}
	copy(out, sum)
	return nil
}

// Reset discards any accumulated state.
func (d *Digest) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.h = d.newHash()
	d.samples = 0
}

// Samples reports the current cumulative sample count, for tests and
// diagnostics.
func (d *Digest) Samples() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.samples
}
