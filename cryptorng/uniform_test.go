package cryptorng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreentropy/ccrng/errs"
	"github.com/coreentropy/ccrng/fortuna"
)

// seededFortuna returns a Fortuna Ctx that is already seeded, so it can
// stand in for "any seeded RNG" in the Uniform tests.
func seededFortuna(t *testing.T) *fortuna.Ctx {
	t.Helper()
	calls := 0
	ctx := fortuna.New(func(buf []byte) (int, int32) {
		calls++
		for i := range buf {
			buf[i] = byte(calls)
		}
		if calls == 1 {
			return len(buf), 1024
		}
		return len(buf), 0
	})
	require.True(t, ctx.Refresh())
	require.True(t, ctx.Seeded())
	return ctx
}

func TestUniformRejectsZeroBound(t *testing.T) {
	ctx := seededFortuna(t)
	_, err := Uniform(ctx, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ParameterErr)
}

func TestUniformBoundOneAlwaysZero(t *testing.T) {
	ctx := seededFortuna(t)
	r, err := Uniform(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r)
}

func TestUniformStaysInRange(t *testing.T) {
	ctx := seededFortuna(t)
	for _, bound := range []uint64{2, 3, 7, 255, 256, 1 << 20, ^uint64(0)} {
		r, err := Uniform(ctx, bound)
		require.NoError(t, err)
		assert.Less(t, r, bound)
	}
}

// TestUniformChiSquared is the chi-squared goodness-of-fit sanity check
// from corecrypto's crypto_test_rng_uniform.c: 2^20 draws of
// Uniform(ctx, 3) should not produce a wildly skewed distribution
// across {0,1,2}. A statistic at or above 44.36142 has probability
// 2^-32 under the null hypothesis and indicates something badly broken.
func TestUniformChiSquared(t *testing.T) {
	ctx := seededFortuna(t)

	const trials = 1 << 20
	var cells [3]uint64
	for i := 0; i < trials; i++ {
		r, err := Uniform(ctx, 3)
		require.NoError(t, err)
		require.Less(t, r, uint64(3))
		cells[r]++
	}

	expected := float64(trials) / 3
	var stat float64
	for _, c := range cells {
		d := float64(c) - expected
		stat += d * d / expected
	}
	assert.Less(t, stat, 44.36142)
}
