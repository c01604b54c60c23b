package process

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreentropy/ccrng/schedule"
)

func TestNewProducesWorkingGenerator(t *testing.T) {
	rng, err := New()
	require.NoError(t, err)

	out := make([]byte, 64)
	require.NoError(t, rng.Generate(64, out))
	assert.False(t, bytes.Equal(out, make([]byte, 64)))
}

func TestDefaultIsASingleton(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

// TestForkHandlersForceReseedInChild covers the fork scenario:
// ChildAfterFork must leave the lock usable even though PrepareFork
// left it held (as it would be across a real fork(2)), and must leave
// the fork flag armed so the child's next Generate is forced to reseed.
func TestForkHandlersForceReseedInChild(t *testing.T) {
	rng, err := New()
	require.NoError(t, err)

	rng.PrepareFork()
	rng.ChildAfterFork()
	assert.Equal(t, schedule.MustReseed, rng.flag.Read(), "fork flag must survive ChildAfterFork")

	done := make(chan struct{})
	go func() {
		out := make([]byte, 16)
		_ = rng.Generate(16, out)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Generate did not complete after ChildAfterFork; lock left held")
	}
}

func TestParentAfterForkReleasesLock(t *testing.T) {
	rng, err := New()
	require.NoError(t, err)

	rng.PrepareFork()
	rng.ParentAfterFork()

	out := make([]byte, 8)
	require.NoError(t, rng.Generate(8, out))
}

// TestConcurrentGenerateAndReseedNoDuplicateOutputs drives N writer
// goroutines calling Generate(32) in a loop alongside one goroutine
// calling Reseed in a loop, mirroring the spec's fork stress scenario:
// every 32-byte output observed across all writers must be distinct,
// and nothing should deadlock or race (run with -race to check the
// latter).
func TestConcurrentGenerateAndReseedNoDuplicateOutputs(t *testing.T) {
	rng, err := New()
	require.NoError(t, err)

	const writers = 8
	const iterations = 64

	var mu sync.Mutex
	seen := make(map[[32]byte]bool)

	var wg sync.WaitGroup
	wg.Add(writers + 1)

	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				var out [32]byte
				if err := rng.Generate(32, out[:]); err != nil {
					continue
				}
				mu.Lock()
				assert.False(t, seen[out], "duplicate 32-byte output observed")
				seen[out] = true
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer wg.Done()
		for j := 0; j < iterations; j++ {
			_ = rng.Reseed(bytes.Repeat([]byte{byte(j)}, 32), nil)
		}
	}()

	wg.Wait()
}
