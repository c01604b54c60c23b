package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	getSeedErr error
	filled     byte
	added      int
	ready      bool
	resetCount int
}

func (s *stubSource) GetSeed(out []byte) error {
	if s.getSeedErr != nil {
		return s.getSeedErr
	}
	for i := range out {
		out[i] = s.filled
	}
	return nil
}

func (s *stubSource) AddEntropy(nsamples int, data []byte) bool {
	s.added += nsamples
	return s.ready
}

func (s *stubSource) Reset() {
	s.resetCount++
}

func TestListGetSeedFallsThroughOnFailure(t *testing.T) {
	failing := &stubSource{getSeedErr: assert.AnError}
	good := &stubSource{filled: 0x7}
	l := NewList(failing, good)

	out := make([]byte, 4)
	require.NoError(t, l.GetSeed(out))
	for _, b := range out {
		assert.Equal(t, byte(0x7), b)
	}
}

func TestListGetSeedFailsWhenAllFail(t *testing.T) {
	l := NewList(&stubSource{getSeedErr: assert.AnError}, &stubSource{getSeedErr: assert.AnError})
	err := l.GetSeed(make([]byte, 4))
	require.Error(t, err)
}

func TestListAddEntropyFansOutAndReportsAnyReady(t *testing.T) {
	a := &stubSource{}
	b := &stubSource{ready: true}
	l := NewList(a, b)

	ready := l.AddEntropy(10, []byte("x"))
	assert.True(t, ready)
	assert.Equal(t, 10, a.added)
	assert.Equal(t, 10, b.added)
}

func TestListResetResetsAll(t *testing.T) {
	a := &stubSource{}
	b := &stubSource{}
	l := NewList(a, b)
	l.Reset()
	assert.Equal(t, 1, a.resetCount)
	assert.Equal(t, 1, b.resetCount)
}
