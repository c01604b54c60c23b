// Package cryptorng implements the crypto RNG layer: a DRBG composed
// with an entropy source and a reseed schedule, fronted by an
// optional output cache and an optional lock. It is the layer the
// process and kernel wiring both build on.
package cryptorng

import (
	"errors"
	"sync"

	"github.com/coreentropy/ccrng/drbg"
	"github.com/coreentropy/ccrng/entropy"
	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/schedule"
)

// CryptoSeedMaxNBytes bounds seed_nbytes. 64 bytes
// comfortably covers every seed size this module draws (32-byte
// Fortuna/CTR-DRBG seeds, up to a 64-byte SHA-512 digest pool).
const CryptoSeedMaxNBytes = 64

// noopLocker is installed when the caller does not supply a lock —
// single-threaded use then needs no synchronization.
type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// Config collects Ctx's construction parameters.
type Config struct {
	Entropy          entropy.Source
	Schedule         schedule.Schedule
	DRBG             drbg.Interface
	Lock             sync.Locker // optional; defaults to no locking
	MaxRequestNBytes int
	SeedNBytes       int
	CacheNBytes      int // 0 disables the cache
}

// Ctx is the crypto RNG layer: DRBG + entropy + schedule + optional
// cache, all behind an optional lock.
type Ctx struct {
	lock             sync.Locker
	entropySrc       entropy.Source
	sched            schedule.Schedule
	drbg             drbg.Interface
	cache            *cache
	maxRequestNBytes int
	seedNBytes       int
}

// New validates cfg and constructs a Ctx. The DRBG must already be
// instantiated.
func New(cfg Config) (*Ctx, error) {
	if cfg.SeedNBytes <= 0 || cfg.SeedNBytes > CryptoSeedMaxNBytes {
		return nil, errs.New(errs.Config, "cryptorng.New", nil)
	}
	lock := cfg.Lock
	if lock == nil {
		lock = noopLocker{}
	}
	return &Ctx{
		lock:             lock,
		entropySrc:       cfg.Entropy,
		sched:            cfg.Schedule,
		drbg:             cfg.DRBG,
		cache:            newCache(cfg.CacheNBytes),
		maxRequestNBytes: cfg.MaxRequestNBytes,
		seedNBytes:       cfg.SeedNBytes,
	}, nil
}

// maybeReseed consults the schedule and, if it recommends reseeding
// (or force is set, which treats the reading as MustReseed), pulls
// seed material and reseeds the DRBG. Must be called with the lock
// held.
func (c *Ctx) maybeReseed(force bool) error {
	action := c.sched.Read()
	if force {
		action = schedule.MustReseed
	}
	if action == schedule.Continue {
		return nil
	}

	seed := make([]byte, c.seedNBytes)
	err := c.entropySrc.GetSeed(seed)
	if err == nil {
		if err := c.drbg.Reseed(seed, nil); err != nil {
			return err
		}
		c.sched.NotifyReseed()
		c.cache.invalidate()
		return nil
	}

	if errors.Is(err, errs.OutOfEntropyErr) {
		if action == schedule.MustReseed {
			return errs.New(errs.NotSeeded, "cryptorng.Generate", err)
		}
		return nil // TryReseed: proceed without having reseeded
	}
	return err
}

// generateLocked fills out[:n] with fresh output. Must be
// called with the lock held; Generate and Reseed acquire it
// themselves.
func (c *Ctx) generateLocked(n int, out []byte) error {
	if err := c.maybeReseed(false); err != nil {
		zero(out[:n])
		return err
	}

	if n <= c.cache.size() {
		if c.cache.available() < n {
			if err := c.cache.refill(func(buf []byte) error { return c.drawChunked(len(buf), buf) }); err != nil {
				zero(out[:n])
				return err
			}
		}
		c.cache.take(out[:n])
		return nil
	}

	if err := c.drawChunked(n, out[:n]); err != nil {
		zero(out[:n])
		return err
	}
	return nil
}

// drawChunked draws n bytes directly from the DRBG, splitting the
// request into pieces no larger than min(maxRequestNBytes, the DRBG's
// own per-call max), and retries a reseed exactly once if a chunk
// reports ErrReseedRequired.
func (c *Ctx) drawChunked(n int, out []byte) error {
	chunkMax := c.maxRequestNBytes
	if dm := c.drbg.Info().MaxRequestNBytes; dm > 0 && dm < chunkMax {
		chunkMax = dm
	}
	if chunkMax <= 0 {
		chunkMax = n
	}

	off := 0
	for off < n {
		size := n - off
		if size > chunkMax {
			size = chunkMax
		}

		err := c.drbg.Generate(size, out[off:off+size], nil)
		if err != nil {
			if !errors.Is(err, drbg.ErrReseedRequired) {
				return err
			}
			if rerr := c.maybeReseed(true); rerr != nil {
				return rerr
			}
			if err := c.drbg.Generate(size, out[off:off+size], nil); err != nil {
				return err
			}
		}
		off += size
	}
	return nil
}

// Generate fills out[:n] with fresh cryptographically secure output.
func (c *Ctx) Generate(n int, out []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.generateLocked(n, out)
}

// Reseed injects caller-provided seed and optional additional input
// directly into the DRBG, bypassing the entropy source.
func (c *Ctx) Reseed(seed, additional []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.drbg.Reseed(seed, additional); err != nil {
		return err
	}
	c.sched.NotifyReseed()
	c.cache.invalidate()
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
