//go:build linux

package process

import "golang.org/x/sys/unix"

// osGetEntropy draws n bytes from the kernel's getrandom(2) syscall,
// the Linux analogue of the process RNG's host-level entropy source.
func osGetEntropy(buf []byte) (int, error) {
	return unix.Getrandom(buf, 0)
}
