// Package process wires the layered RNG stack into a concrete
// per-process generator: a tree of a 5-second timer and a
// fork-boundary atomic flag schedule, an OS-getentropy-backed
// entropy source, and an AES-CTR-DRBG with a derivation function.
package process

import (
	"sync"
	"time"

	"github.com/coreentropy/ccrng/cryptorng"
	"github.com/coreentropy/ccrng/drbg"
	"github.com/coreentropy/ccrng/entropy"
	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/schedule"
)

const (
	seedNBytes       = 32
	cacheNBytes      = 256
	maxRequestNBytes = 4096
	timerInterval    = 5 * time.Second

	// drbgReseedInterval bounds the number of DRBG generate calls
	// before the CTR-DRBG itself insists on a reseed, independent of
	// the timer/fork schedule above. Not specified numerically by the
	// source; chosen generously high since the timer and fork flag
	// are the schedules that matter in practice for this wiring.
	drbgReseedInterval = 1 << 32
)

// RNG is a process-wide cryptographic random generator: the crypto RNG
// layer composed around a timer/fork-flag schedule, plus the fork
// handlers that keep it safe across fork(2) boundaries.
type RNG struct {
	mu   *sync.Mutex
	flag *schedule.AtomicFlag
	ctx  *cryptorng.Ctx
}

// New constructs a fully seeded process RNG: it draws an initial
// 32-byte seed from the OS entropy source to instantiate the DRBG,
// then composes the crypto RNG layer around it.
func New() (*RNG, error) {
	entropyRNG := newOSEntropyRNG()
	src := entropy.NewRNGSource(entropyRNG)

	seed := make([]byte, seedNBytes)
	if err := src.GetSeed(seed); err != nil {
		return nil, errs.New(errs.OutOfEntropy, "process.New", err)
	}

	d := drbg.NewCTR(seedNBytes, drbgReseedInterval)
	if err := d.Init(seed, []byte("ccrng process rng")); err != nil {
		return nil, err
	}

	mu := &sync.Mutex{}
	flag := schedule.NewAtomicFlag()
	timer := schedule.NewTimer(timerInterval.Nanoseconds(), func() int64 { return time.Now().UnixNano() })
	tree := schedule.NewTree(timer, flag)

	ctx, err := cryptorng.New(cryptorng.Config{
		Entropy:          src,
		Schedule:         tree,
		DRBG:             d,
		Lock:             mu,
		MaxRequestNBytes: maxRequestNBytes,
		SeedNBytes:       seedNBytes,
		CacheNBytes:      cacheNBytes,
	})
	if err != nil {
		return nil, err
	}

	return &RNG{mu: mu, flag: flag, ctx: ctx}, nil
}

// Generate fills out[:n] with fresh cryptographically secure bytes.
func (r *RNG) Generate(n int, out []byte) error {
	return r.ctx.Generate(n, out)
}

// Reseed injects caller-provided material directly into the DRBG.
func (r *RNG) Reseed(seed, additional []byte) error {
	return r.ctx.Reseed(seed, additional)
}

// Uniform draws a value in [0, bound) without modulo bias.
func (r *RNG) Uniform(bound uint64) (uint64, error) {
	return r.ctx.Uniform(bound)
}

// PrepareFork acquires the RNG lock and arms the fork-boundary flag,
// to be called immediately before a fork(2).
func (r *RNG) PrepareFork() {
	r.mu.Lock()
	r.flag.Set()
}

// ParentAfterFork releases the lock in the parent process after fork
// returns.
func (r *RNG) ParentAfterFork() {
	r.mu.Unlock()
}

// ChildAfterFork re-initializes the lock in the freshly forked child
// in place (the mutex's memory was duplicated by fork(2) and may be
// observed as held). The armed flag survives the fork, so the child's
// next Generate call forces a reseed.
func (r *RNG) ChildAfterFork() {
	*r.mu = sync.Mutex{}
}

var (
	defaultOnce sync.Once
	defaultRNG  *RNG
	defaultErr  error
)

// Default returns the process-wide singleton RNG, lazily constructing
// it on first use.
func Default() (*RNG, error) {
	defaultOnce.Do(func() {
		defaultRNG, defaultErr = New()
	})
	return defaultRNG, defaultErr
}
