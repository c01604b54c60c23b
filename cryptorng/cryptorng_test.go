package cryptorng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreentropy/ccrng/drbg"
	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/schedule"
)

type fakeSource struct {
	fill    byte
	err     error
	getSeed int
}

func (f *fakeSource) GetSeed(out []byte) error {
	f.getSeed++
	if f.err != nil {
		return f.err
	}
	for i := range out {
		out[i] = f.fill
	}
	return nil
}
func (f *fakeSource) AddEntropy(nsamples int, data []byte) bool { return false }
func (f *fakeSource) Reset()                                    {}

type fakeDRBG struct {
	generateCalls int
	reseedCalls   int
	failNCalls    int // Generate returns ErrReseedRequired this many times before succeeding
	fill          byte
	maxRequest    int
}

func (f *fakeDRBG) Info() drbg.Info {
	return drbg.Info{SeedNBytes: 32, MaxRequestNBytes: f.maxRequest}
}
func (f *fakeDRBG) Init(seed, personalization []byte) error { return nil }
func (f *fakeDRBG) Reseed(seed, additional []byte) error {
	f.reseedCalls++
	f.fill++
	return nil
}
func (f *fakeDRBG) Generate(n int, out []byte, additional []byte) error {
	f.generateCalls++
	if f.failNCalls > 0 {
		f.failNCalls--
		return drbg.ErrReseedRequired
	}
	for i := 0; i < n; i++ {
		out[i] = f.fill
	}
	return nil
}
func (f *fakeDRBG) ReseedRequired() bool { return f.failNCalls > 0 }
func (f *fakeDRBG) Done()                {}

func newTestCtx(t *testing.T, sched schedule.Schedule, src *fakeSource, d *fakeDRBG, cacheSize int) *Ctx {
	t.Helper()
	if d.maxRequest == 0 {
		d.maxRequest = 1 << 16
	}
	ctx, err := New(Config{
		Entropy:          src,
		Schedule:         sched,
		DRBG:             d,
		MaxRequestNBytes: 4096,
		SeedNBytes:       32,
		CacheNBytes:      cacheSize,
	})
	require.NoError(t, err)
	return ctx
}

func TestGenerateContinueDrawsDirectlyFromDRBG(t *testing.T) {
	sched := schedule.NewConstant(schedule.Continue)
	src := &fakeSource{}
	d := &fakeDRBG{fill: 1}
	ctx := newTestCtx(t, sched, src, d, 0)

	out := make([]byte, 16)
	require.NoError(t, ctx.Generate(16, out))
	assert.Equal(t, 0, src.getSeed)
	assert.Equal(t, 1, d.generateCalls)
}

func TestGenerateTryReseedProceedsOnOutOfEntropy(t *testing.T) {
	sched := schedule.NewConstant(schedule.TryReseed)
	src := &fakeSource{err: errs.OutOfEntropyErr}
	d := &fakeDRBG{fill: 9}
	ctx := newTestCtx(t, sched, src, d, 0)

	out := make([]byte, 8)
	require.NoError(t, ctx.Generate(8, out))
	assert.Equal(t, 0, d.reseedCalls)
}

func TestGenerateMustReseedFailsOnOutOfEntropy(t *testing.T) {
	sched := schedule.NewConstant(schedule.MustReseed)
	src := &fakeSource{err: errs.OutOfEntropyErr}
	d := &fakeDRBG{fill: 9}
	ctx := newTestCtx(t, sched, src, d, 0)

	out := []byte{1, 2, 3, 4}
	err := ctx.Generate(4, out)
	require.Error(t, err)
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}

func TestGenerateReseedsAndNotifiesSchedule(t *testing.T) {
	sched := schedule.NewAtomicFlag()
	sched.Set()
	src := &fakeSource{fill: 0x42}
	d := &fakeDRBG{fill: 7}
	ctx := newTestCtx(t, sched, src, d, 0)

	out := make([]byte, 8)
	require.NoError(t, ctx.Generate(8, out))
	assert.Equal(t, 1, src.getSeed)
	assert.Equal(t, 1, d.reseedCalls)
	assert.Equal(t, schedule.Continue, sched.Read())
}

func TestGenerateRetriesOnceOnReseedRequired(t *testing.T) {
	sched := schedule.NewConstant(schedule.Continue)
	src := &fakeSource{fill: 0x11}
	d := &fakeDRBG{fill: 5, failNCalls: 1}
	ctx := newTestCtx(t, sched, src, d, 0)

	out := make([]byte, 8)
	require.NoError(t, ctx.Generate(8, out))
	assert.Equal(t, 1, d.reseedCalls)
}

func TestGenerateServesRepeatedSmallRequestsFromCache(t *testing.T) {
	sched := schedule.NewConstant(schedule.Continue)
	src := &fakeSource{}
	d := &fakeDRBG{fill: 3}
	ctx := newTestCtx(t, sched, src, d, 64)

	for i := 0; i < 4; i++ {
		out := make([]byte, 16)
		require.NoError(t, ctx.Generate(16, out))
	}
	assert.Equal(t, 1, d.generateCalls, "four 16-byte draws from a 64-byte cache should need one refill")
}

func TestReseedInvalidatesCacheAndNotifiesSchedule(t *testing.T) {
	sched := schedule.NewConstant(schedule.Continue)
	src := &fakeSource{}
	d := &fakeDRBG{fill: 3}
	ctx := newTestCtx(t, sched, src, d, 64)

	out := make([]byte, 16)
	require.NoError(t, ctx.Generate(16, out))
	require.NoError(t, ctx.Reseed(make([]byte, 32), nil))
	assert.Equal(t, 1, d.reseedCalls)

	require.NoError(t, ctx.Generate(16, out))
	assert.Equal(t, 2, d.generateCalls, "cache should have been invalidated by Reseed")
}

func TestNewRejectsSeedSizeOutOfRange(t *testing.T) {
	_, err := New(Config{
		Entropy:          &fakeSource{},
		Schedule:         schedule.NewConstant(schedule.Continue),
		DRBG:             &fakeDRBG{},
		MaxRequestNBytes: 4096,
		SeedNBytes:       CryptoSeedMaxNBytes + 1,
	})
	require.Error(t, err)
}
