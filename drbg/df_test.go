package drbg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a, err := derive([]byte("some seed material"), 48)
	require.NoError(t, err)
	b, err := derive([]byte("some seed material"), 48)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveDiffersOnInput(t *testing.T) {
	a, err := derive([]byte("seed one"), 48)
	require.NoError(t, err)
	b, err := derive([]byte("seed two"), 48)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b))
}

func TestDeriveRespectsReturnLength(t *testing.T) {
	out, err := derive([]byte("x"), 17)
	require.NoError(t, err)
	assert.Len(t, out, 17)
}
