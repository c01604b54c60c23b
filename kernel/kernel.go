// Package kernel wires the kernel-side PRNG: Fortuna doubles as both
// the underlying generator and the in-kernel entropy collector, and
// the same crypto RNG layer process uses sits on top of it, fed by a
// list of (SHA-512 first-seed digest accumulator, then
// RNG-backed-from-Fortuna) and gated by an atomic-flag schedule.
package kernel

import (
	"crypto/sha512"
	"sync"
	"time"

	"github.com/coreentropy/ccrng/cryptorng"
	"github.com/coreentropy/ccrng/drbg"
	"github.com/coreentropy/ccrng/entropy"
	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/fortuna"
	"github.com/coreentropy/ccrng/schedule"
)

const (
	// minRefreshBytes is the kernel-side interrupt-sample staging
	// buffer size per refresh call — distinct from Fortuna's own
	// 64-byte scratch buffer in fortuna.Ctx.Refresh.
	minRefreshBytes = 32

	// firstSeedThresholdBits is the cumulative entropy (one bit per
	// input byte) the first-seed digest must
	// accumulate before it is considered full: 512 bits matches the
	// SHA-512 digest it accumulates into.
	firstSeedThresholdBits = 512

	kernelSeedNBytes       = 32
	kernelCacheNBytes      = 64
	kernelMaxRequestNBytes = 4096
	kernelDrbgReseedLimit  = 1 << 32
)

// HostEntropy supplies raw host interrupt-timing samples to the
// kernel entropy collector. It mirrors fortuna.GetEntropyFunc's
// contract: a negative return is a hard failure, zero means "nothing
// this call."
type HostEntropy func(buf []byte) (samples int32)

// Config collects Ctx's construction parameters.
type Config struct {
	// HostEntropy supplies interrupt-sample entropy; required.
	HostEntropy HostEntropy
	// Nonce supplies the timestamp-derived additional input Reseed
	// mixes in. Injectable for tests.
	Nonce func() uint64
}

// firstSeedSource wraps a SHA-512 entropy.Digest so it behaves like
// the corecrypto cckprng first-seed pool: it reports OUT_OF_ENTROPY
// until firstSeedThresholdBits have accumulated, yields its digest
// exactly once, and reports OUT_OF_ENTROPY forever after.
type firstSeedSource struct {
	digest *entropy.Digest
	used   bool
}

func newFirstSeedSource() *firstSeedSource {
	return &firstSeedSource{digest: entropy.NewDigest(sha512.New, firstSeedThresholdBits).WithStretch(kernelSeedNBytes)}
}

func (s *firstSeedSource) GetSeed(out []byte) error {
	if s.used || s.digest.Samples() < firstSeedThresholdBits {
		return errs.New(errs.OutOfEntropy, "kernel.firstSeedSource.GetSeed", nil)
	}
	if err := s.digest.GetSeed(out); err != nil {
		return err
	}
	s.used = true
	return nil
}

func (s *firstSeedSource) AddEntropy(nsamples int, data []byte) bool {
	return s.digest.AddEntropy(nsamples, data)
}

func (s *firstSeedSource) Reset() {
	s.digest.Reset()
	s.used = false
}

// Ctx is the kernel-side PRNG: a Fortuna accumulator serving as both
// generator and entropy collector, topped by the crypto RNG layer.
type Ctx struct {
	fortunaCtx  *fortuna.Ctx
	firstSeed   *firstSeedSource
	flag        *schedule.AtomicFlag
	cryptoCtx   *cryptorng.Ctx
	hostEntropy HostEntropy
	nonce       func() uint64
}

// New constructs a kernel Ctx. The returned Ctx is not yet seeded;
// call RefreshEntropy repeatedly (e.g. from an interrupt-coalesce
// timer) until Seeded reports true.
func New(cfg Config) (*Ctx, error) {
	if cfg.HostEntropy == nil {
		return nil, errs.New(errs.Config, "kernel.New", nil)
	}
	nonce := cfg.Nonce
	if nonce == nil {
		nonce = func() uint64 { return uint64(time.Now().UnixNano()) }
	}

	c := &Ctx{
		firstSeed:   newFirstSeedSource(),
		flag:        schedule.NewAtomicFlag(),
		hostEntropy: cfg.HostEntropy,
		nonce:       nonce,
	}
	c.fortunaCtx = fortuna.New(c.getEntropy)

	fortunaSource := entropy.NewRNGSource(c.fortunaCtx)
	src := entropy.NewList(c.firstSeed, fortunaSource)

	d := drbg.NewCTR(kernelSeedNBytes, kernelDrbgReseedLimit)
	seed := make([]byte, kernelSeedNBytes)
	// A freshly constructed kernel Ctx has no entropy yet; the DRBG is
	// instantiated from an all-zero seed and immediately armed for a
	// mandatory reseed via the atomic flag, so no output escapes
	// before RefreshEntropy has actually seeded Fortuna.
	if err := d.Init(seed, []byte("ccrng kernel rng")); err != nil {
		return nil, err
	}
	c.flag.Set()

	cryptoCtx, err := cryptorng.New(cryptorng.Config{
		Entropy:          src,
		Schedule:         c.flag,
		DRBG:             d,
		Lock:             &sync.Mutex{},
		MaxRequestNBytes: kernelMaxRequestNBytes,
		SeedNBytes:       kernelSeedNBytes,
		CacheNBytes:      kernelCacheNBytes,
	})
	if err != nil {
		return nil, err
	}
	c.cryptoCtx = cryptoCtx
	return c, nil
}

// getEntropy is the fortuna.GetEntropyFunc this Ctx installs into its
// Fortuna core. It pulls minRefreshBytes from the host interrupt
// sampler, hands them to Fortuna for pool absorption, and — nested
// inside this same callback, as corecrypto's cckprng does it rather
// than as a separate top-level step — also feeds them to the
// first-seed digest, arming the reseed flag the moment it fills.
func (c *Ctx) getEntropy(buf []byte) (int, int32) {
	var local [minRefreshBytes]byte
	samples := c.hostEntropy(local[:])
	if samples < 0 {
		return 0, samples
	}

	written := copy(buf, local[:])

	if ready := c.firstSeed.AddEntropy(len(local), local[:]); ready {
		c.flag.Set()
	}

	return written, samples
}

// RefreshEntropy pulls one round of host entropy into Fortuna. Returns
// true iff a scheduled reseed completed in this call, mirroring
// fortuna.Ctx.Refresh.
func (c *Ctx) RefreshEntropy() bool {
	return c.fortunaCtx.Refresh()
}

// Seeded reports whether the underlying Fortuna core has absorbed
// enough entropy to produce output.
func (c *Ctx) Seeded() bool {
	return c.fortunaCtx.Seeded()
}

// Generate fills out[:n] with fresh cryptographically secure bytes
// from the crypto RNG layer.
func (c *Ctx) Generate(n int, out []byte) error {
	return c.cryptoCtx.Generate(n, out)
}

// Reseed injects caller-provided seed material directly into the
// DRBG, mixing in a timestamp-derived nonce as additional input —
// reproducing corecrypto's cckprng_reseed, which always passes a
// nonce alongside the caller's seed.
func (c *Ctx) Reseed(seed []byte) error {
	var nonceBuf [8]byte
	n := c.nonce()
	for i := 7; i >= 0; i-- {
		nonceBuf[i] = byte(n)
		n >>= 8
	}
	return c.cryptoCtx.Reseed(seed, nonceBuf[:])
}

// AbsorbEntropy feeds data into the Fortuna entropy path as a single,
// fully trusted sample — the Go analogue of writing to the kernel's
// entropy device (CCKPRNG_RANDOMDEV in corecrypto's
// cckprng_loadseed.c): unlike the low-confidence per-interrupt-timing
// samples getEntropy reports, a loaded seed file or hypervisor-supplied
// blob already represents a full seed's worth of material, so it is
// reported at fortuna.SeededThreshold quality, crossing the seeded
// threshold in one call rather than waiting on accumulated interrupt
// samples.
func (c *Ctx) AbsorbEntropy(data []byte) {
	c.fortunaCtx.AddEntropy(data, fortuna.SeededThreshold)
}

// LoadBootSeed streams a previously persisted seed file's contents
// into the Fortuna entropy path (see AbsorbEntropy), exactly as the
// kernel's "write entropy" device does at boot (spec §4.5) — not a
// direct DRBG reseed. A missing or unreadable seed file is non-fatal:
// the kernel PRNG proceeds without it.
func (c *Ctx) LoadBootSeed(hostos HostOS, path string) error {
	seed, err := LoadSeedFile(hostos, path)
	if err != nil {
		return nil
	}
	c.AbsorbEntropy(seed)
	return nil
}

// StoreShutdownSeed pulls SeedFileNBytes of fresh output from the
// crypto RNG layer and persists them to the seed file for the next
// boot.
func (c *Ctx) StoreShutdownSeed(hostos HostOS, path string) error {
	seed := make([]byte, SeedFileNBytes)
	if err := c.Generate(len(seed), seed); err != nil {
		return err
	}
	return StoreSeedFile(hostos, path, seed)
}

// Diagnostics exposes the underlying Fortuna diagnostics counters.
func (c *Ctx) Diagnostics() fortuna.Diagnostics {
	return c.fortunaCtx.Diagnostics()
}

// Uniform draws a value in [0, bound) without modulo bias.
func (c *Ctx) Uniform(bound uint64) (uint64, error) {
	return c.cryptoCtx.Uniform(bound)
}
