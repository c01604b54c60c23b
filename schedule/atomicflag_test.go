package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicFlagSetRead(t *testing.T) {
	f := NewAtomicFlag()
	assert.Equal(t, Continue, f.Read())

	f.Set()
	assert.Equal(t, MustReseed, f.Read())

	f.NotifyReseed()
	assert.Equal(t, Continue, f.Read())
}

func TestAtomicFlagConcurrentSet(t *testing.T) {
	f := NewAtomicFlag()
	done := make(chan struct{})
	go func() {
		f.Set()
		close(done)
	}()
	<-done
	assert.Equal(t, MustReseed, f.Read())
}
