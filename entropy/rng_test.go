package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRNG struct {
	fill byte
	err  error
}

func (r *fakeRNG) Generate(n int, out []byte) error {
	if r.err != nil {
		return r.err
	}
	for i := 0; i < n; i++ {
		out[i] = r.fill
	}
	return nil
}

func TestRNGSourceGetSeedForwards(t *testing.T) {
	s := NewRNGSource(&fakeRNG{fill: 0x42})
	out := make([]byte, 8)
	require.NoError(t, s.GetSeed(out))
	for _, b := range out {
		assert.Equal(t, byte(0x42), b)
	}
}

func TestRNGSourceIsNotAccumulating(t *testing.T) {
	s := NewRNGSource(&fakeRNG{fill: 0})
	assert.False(t, s.AddEntropy(1024, []byte("x")))
	s.Reset() // must not panic
}
