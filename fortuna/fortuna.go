package fortuna

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"
	"sync"

	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/internal/abort"
	"github.com/coreentropy/ccrng/internal/hwrand"
)

// SeededThreshold is the cumulative sample count a scheduled reseed
// must absorb before the generator is considered seeded. Exported so
// external entropy-injection callers (e.g. the kernel seed-file
// loader's AddEntropy calls) can report a quality count on the same
// scale GetEntropyFunc does.
const SeededThreshold = 1024

// entropyBufSize is the size of the scratch buffer Refresh offers the
// entropy callback on each call.
const entropyBufSize = 64

// GetEntropyFunc supplies fresh entropy samples to Refresh. buf is the
// scratch buffer available to fill (up to entropyBufSize bytes); the
// callback returns the number of bytes it wrote and a sample count.
// A negative sample count is an entropy-source failure and forces a
// full Reset; zero means "no samples this call, try again later."
//
// The callback must not call back into this Ctx (it would deadlock
// the Fortuna lock) and may only touch its own state and hwrand.
type GetEntropyFunc func(buf []byte) (written int, samples int32)

// Diagnostics is the observable, non-secret state of a Ctx, exported
// for monitoring. Counters are monotonic except across a Reset.
type Diagnostics struct {
	NReseeds               uint64
	SchedReseedNSamplesMax uint32
	AddEntropyNSamplesMax  uint32
	Pools                  [NPools]PoolDiagnostics
}

// Ctx is the Fortuna accumulator and CTR generator. The zero value is
// not usable; construct with Init or New.
type Ctx struct {
	mu sync.Mutex

	pools [NPools]pool

	reseedSched uint64
	poolIdx     uint32

	gen    generator
	seeded bool

	nreseeds               uint64
	schedReseedNSamplesMax uint32
	addEntropyNSamplesMax  uint32

	getEntropy GetEntropyFunc
}

// Init zeroes all state, installs the entropy callback, and asserts
// the pool-count design constant.
func Init(ctx *Ctx, getEntropy GetEntropyFunc) {
	if NPools != 32 {
		abort.Abort("fortuna: NPools must be 32")
	}
	*ctx = Ctx{getEntropy: getEntropy}
}

// New returns a freshly initialized Ctx.
func New(getEntropy GetEntropyFunc) *Ctx {
	ctx := &Ctx{}
	Init(ctx, getEntropy)
	return ctx
}

// Seeded reports whether a scheduled reseed has absorbed at least
// SeededThreshold cumulative samples since the last Reset.
func (ctx *Ctx) Seeded() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.seeded
}

// Diagnostics returns a snapshot of the observability counters.
func (ctx *Ctx) Diagnostics() Diagnostics {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	d := Diagnostics{
		NReseeds:               ctx.nreseeds,
		SchedReseedNSamplesMax: ctx.schedReseedNSamplesMax,
		AddEntropyNSamplesMax:  ctx.addEntropyNSamplesMax,
	}
	for i := range ctx.pools {
		d.Pools[i] = ctx.pools[i].diagnostics()
	}
	return d
}

// schedule advances the round-robin pool cursor and returns the pool
// to absorb into (poolIn) and, if this call lands on pool 0, the
// highest pool index a scheduled reseed should drain (poolOut, or -1
// if none is due). Must be called with ctx.mu held.
func (ctx *Ctx) schedule() (poolIn int, poolOut int) {
	poolIn = int(ctx.poolIdx)
	ctx.poolIdx = (ctx.poolIdx + 1) % NPools

	poolOut = -1
	if poolIn == 0 {
		ctx.reseedSched++
		poolOut = bits.TrailingZeros64(ctx.reseedSched)
	}
	return poolIn, poolOut
}

// addEntropy absorbs entropy into pool poolIdx.
// Must be called with ctx.mu held.
func (ctx *Ctx) addEntropy(poolIdx int, entropy []byte, nsamples uint32) {
	if poolIdx < 0 {
		return
	}

	p := &ctx.pools[poolIdx]

	h := sha256.New()
	h.Write(labelAddEntropy[:])

	var id [4]byte
	binary.BigEndian.PutUint32(id[:], uint32(poolIdx))
	h.Write(id[:])

	h.Write(p.data[:])

	rnd, _ := hwrand.Read64()
	var rndBuf [8]byte
	binary.BigEndian.PutUint64(rndBuf[:], rnd)
	h.Write(rndBuf[:])

	h.Write(entropy)

	copy(p.data[:], h.Sum(nil))

	p.nsamples += nsamples
	if p.nsamples > p.nsamplesMax {
		p.nsamplesMax = p.nsamples
	}
	if nsamples > ctx.addEntropyNSamplesMax {
		ctx.addEntropyNSamplesMax = nsamples
	}
}

// schedReseed drains pools [0..=poolOut] into the generator key.
// Must be called with ctx.mu held. Returns whether the
// generator is seeded after this reseed.
func (ctx *Ctx) schedReseed(poolOut int) bool {
	if poolOut < 0 {
		return false
	}

	h := sha256.New()
	h.Write(labelSchedReseed[:])

	var sched [8]byte
	binary.BigEndian.PutUint64(sched[:], ctx.reseedSched)
	h.Write(sched[:])

	h.Write(ctx.gen.key[:])

	var totalSamples uint64
	for i := 0; i <= poolOut; i++ {
		p := &ctx.pools[i]
		h.Write(p.data[:])
		totalSamples += uint64(p.nsamples)
		p.data = [32]byte{}
		p.nsamples = 0
		p.ndrains++
	}

	copy(ctx.gen.key[:], h.Sum(nil))

	if totalSamples >= SeededThreshold {
		ctx.seeded = true
	}

	ctx.nreseeds++
	if totalSamples > uint64(ctx.schedReseedNSamplesMax) {
		ctx.schedReseedNSamplesMax = uint32(totalSamples)
	}

	return ctx.seeded
}

// reset zeros all pools and counters and clears seeded.
// Must be called with ctx.mu held.
func (ctx *Ctx) reset() {
	ctx.seeded = false
	ctx.nreseeds = 0
	ctx.schedReseedNSamplesMax = 0
	ctx.addEntropyNSamplesMax = 0
	for i := range ctx.pools {
		ctx.pools[i].reset()
	}
	ctx.reseedSched = 0
	ctx.poolIdx = 0
}

// Refresh pulls one round of entropy and performs at most one
// scheduled absorption. It uses a non-blocking try-lock: if the lock
// is already held (Generate or another Refresh is in progress) it
// returns false immediately rather than waiting, which is what makes
// it safe to call from interrupt-like contexts.
// It returns true iff a reseed completed during this call.
func (ctx *Ctx) Refresh() bool {
	if !ctx.mu.TryLock() {
		return false
	}
	defer ctx.mu.Unlock()

	var buf [entropyBufSize]byte
	written, samples := ctx.getEntropy(buf[:])

	if samples < 0 {
		ctx.reset()
		return false
	}
	if samples == 0 {
		return false
	}

	poolIn, poolOut := ctx.schedule()
	ctx.addEntropy(poolIn, buf[:written], uint32(samples))
	return ctx.schedReseed(poolOut)
}

// AddEntropy absorbs externally supplied entropy directly into the
// pool the schedule currently selects, bypassing the installed
// GetEntropyFunc — the same schedule/absorb/maybe-reseed sequence
// Refresh runs, just driven by a caller-supplied buffer instead of an
// invocation of getEntropy. This is the path a "write entropy device"
// uses to feed Fortuna (e.g. a loaded seed file or externally supplied
// platform entropy), mirroring corecrypto's cckprng_loadseed.c writing
// into CCKPRNG_RANDOMDEV rather than reseeding the DRBG directly.
// nsamples is the caller's quality estimate for data, on the same
// scale GetEntropyFunc reports; a negative nsamples forces a full
// Reset, mirroring a failed GetEntropyFunc call. Returns true iff a
// scheduled reseed completed.
func (ctx *Ctx) AddEntropy(data []byte, nsamples int32) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if nsamples < 0 {
		ctx.reset()
		return false
	}
	if nsamples == 0 {
		return false
	}

	poolIn, poolOut := ctx.schedule()
	ctx.addEntropy(poolIn, data, uint32(nsamples))
	return ctx.schedReseed(poolOut)
}

// Generate fills out[:n] with fresh output, or fails with
// errs.NotSeeded if the generator has not yet absorbed a full seed.
// n must not exceed GenerateMaxNBytes; a larger request is a caller
// bug and triggers a fatal invariant violation rather than an error
// return. Generate never touches the entropy callback and never
// blocks beyond acquiring ctx.mu.
func (ctx *Ctx) Generate(n int, out []byte) error {
	if n > GenerateMaxNBytes {
		abort.Abort("fortuna: generate request of %d bytes exceeds GenerateMaxNBytes", n)
	}
	if len(out) < n {
		abort.Abort("fortuna: output buffer shorter than requested n")
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if !ctx.seeded {
		for i := 0; i < n; i++ {
			out[i] = 0
		}
		return errs.New(errs.NotSeeded, "fortuna.Generate", nil)
	}

	if err := ctx.gen.generate(n, out); err != nil {
		for i := 0; i < n; i++ {
			out[i] = 0
		}
		return errs.New(errs.Internal, "fortuna.Generate", err)
	}
	return nil
}
