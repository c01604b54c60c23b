// Package drbg defines the external DRBG contract the crypto RNG
// layer is built over, together with one concrete implementation, an
// AES-CTR-DRBG with a block-cipher derivation function. This package
// builds its own rather than importing github.com/sixafter/aes-ctr-drbg
// directly: that library's Interface is an io.Reader with no explicit
// Reseed-with-additional-input or reseed-counter introspection, both
// of which the crypto RNG layer requires.
package drbg

import "github.com/coreentropy/ccrng/errs"

// MaxRequestNBytes is the largest single Generate call this
// implementation will service; larger requests are a caller bug.
const MaxRequestNBytes = 1 << 16

// Info is the immutable, non-secret configuration of a DRBG instance.
type Info struct {
	// SeedNBytes is the number of bytes Reseed expects.
	SeedNBytes int
	// MaxRequestNBytes is the largest byte count this implementation
	// accepts in a single Generate call.
	MaxRequestNBytes int
	// ReseedInterval is the number of Generate calls this instance
	// tolerates before ReseedRequired reports true.
	ReseedInterval uint64
}

// Interface is the contract an already-instantiated DRBG exposes to
// cryptorng.Ctx: Init seeds it for the first time, Reseed mixes in
// fresh seed material (and optional caller-provided additional
// input), Generate produces output, and Done releases any resources.
// Implementations must be safe for concurrent use only insofar as
// their caller serializes access — cryptorng.Ctx's lock is what makes
// that safe in practice.
type Interface interface {
	Info() Info

	// Init seeds the DRBG for the first time from seed (exactly
	// Info().SeedNBytes long) and an optional personalization string.
	Init(seed, personalization []byte) error

	// Reseed mixes fresh seed material (exactly Info().SeedNBytes
	// long) and optional additional input into the DRBG state,
	// resetting its internal reseed counter.
	Reseed(seed, additional []byte) error

	// Generate writes exactly n bytes to out, mixing in optional
	// additional input. It returns ErrReseedRequired (wrapping
	// errs.NotSeeded) if the internal reseed counter has saturated;
	// the caller is expected to reseed and retry exactly once.
	Generate(n int, out []byte, additional []byte) error

	// ReseedRequired reports whether the next Generate call would
	// fail with ErrReseedRequired, for schedule.DrbgCounter to poll
	// without forcing a Generate call.
	ReseedRequired() bool

	// Done releases any sensitive state. Safe to call multiple times.
	Done()
}

// ErrReseedRequired is returned by Generate when the DRBG's internal
// reseed counter has saturated and no reseed has happened since.
var ErrReseedRequired = errs.New(errs.NotSeeded, "drbg.Generate", nil)
