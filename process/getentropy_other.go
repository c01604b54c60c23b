//go:build !linux

package process

import "crypto/rand"

// osGetEntropy draws n bytes from the platform's best available
// entropy source, generalized to every non-Linux GOOS this module
// might run on.
func osGetEntropy(buf []byte) (int, error) {
	return rand.Read(buf)
}
