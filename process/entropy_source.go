package process

import "github.com/coreentropy/ccrng/errs"

// getEntropyChunkSize is the largest single read the OS entropy
// source draws per syscall.
const getEntropyChunkSize = 256

// osEntropyRNG adapts the platform getentropy implementation into the
// entropy.RNG contract so it can be wrapped by entropy.NewRNGSource.
// read defaults to osGetEntropy and is overridable for tests.
type osEntropyRNG struct {
	read func(buf []byte) (int, error)
}

func newOSEntropyRNG() *osEntropyRNG {
	return &osEntropyRNG{read: osGetEntropy}
}

// Generate fills out[:n] by chunking the request across repeated
// reads of at most getEntropyChunkSize bytes.
func (r *osEntropyRNG) Generate(n int, out []byte) error {
	off := 0
	for off < n {
		size := n - off
		if size > getEntropyChunkSize {
			size = getEntropyChunkSize
		}
		written, err := r.read(out[off : off+size])
		if err != nil {
			return errs.New(errs.OutOfEntropy, "process.osEntropyRNG.Generate", err)
		}
		if written == 0 {
			return errs.New(errs.OutOfEntropy, "process.osEntropyRNG.Generate", nil)
		}
		off += written
	}
	return nil
}
