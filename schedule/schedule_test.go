package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionOrdering(t *testing.T) {
	assert.True(t, Continue < TryReseed)
	assert.True(t, TryReseed < MustReseed)
	assert.Equal(t, MustReseed, max(Continue, MustReseed))
	assert.Equal(t, TryReseed, max(Continue, TryReseed))
}

func TestConstantReadsFixedAction(t *testing.T) {
	c := NewConstant(TryReseed)
	assert.Equal(t, TryReseed, c.Read())
	assert.Equal(t, TryReseed, c.Read())
}

// TestStickyMustReseed covers a MUST_RESEED underlayer staying
// MUST_RESEED across reads until notified.
func TestStickyMustReseed(t *testing.T) {
	c := NewConstant(MustReseed)
	assert.Equal(t, MustReseed, c.Read())
	assert.Equal(t, MustReseed, c.Read())
	c.NotifyReseed()
	assert.Equal(t, MustReseed, c.Read(), "constant MUST_RESEED underlayer should still report MUST_RESEED after notify")
}

func TestStickyLatchesTransientMustReseed(t *testing.T) {
	flag := NewAtomicFlag()
	flag.Set()
	assert.Equal(t, MustReseed, flag.Read())

	flag.flag.Store(false) // simulate the underlying condition clearing on its own
	assert.Equal(t, MustReseed, flag.Read(), "sticky latch must still report MUST_RESEED")

	flag.NotifyReseed()
	assert.Equal(t, Continue, flag.Read())
}
