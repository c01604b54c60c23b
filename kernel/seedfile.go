package kernel

import (
	"io"
	"os"

	"github.com/coreentropy/ccrng/errs"
)

// SeedFileNBytes is the fixed seed file size this package writes.
const SeedFileNBytes = 32

// seedFileMode is the required file mode: 0600, writable only by its
// owner.
const seedFileMode = 0o600

// loadSeedFileChunk is the per-read buffer size LoadSeedFile streams
// through — mirrors CCKPRNG_SEEDSIZE, the buffer cckprng_loadseed.c
// reads into on each read(2) call before writing it on to the entropy
// device.
const loadSeedFileChunk = 32

// maxSeedFileNBytes caps how much a single LoadSeedFile call will ever
// accumulate, guarding against an unbounded read from a misconfigured
// seed path; this is far larger than any seed file this package
// itself ever writes.
const maxSeedFileNBytes = 1 << 16

// LoadSeedFile reads the full contents of the seed file at path via
// hostos, looping until EOF rather than assuming a single read fills
// a fixed-size buffer — matching cckprng_loadseed.c, which loops
// read() until it returns 0 so any file size streams through intact.
// A missing or unreadable file is reported as an error; the kernel
// wiring treats that as non-fatal and proceeds without it.
func LoadSeedFile(hostos HostOS, path string) ([]byte, error) {
	f, err := hostos.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errs.New(errs.OutOfEntropy, "kernel.LoadSeedFile", err)
	}
	defer f.Close()

	var out []byte
	buf := make([]byte, loadSeedFileChunk)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if len(out) > maxSeedFileNBytes {
				return nil, errs.New(errs.Config, "kernel.LoadSeedFile", nil)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errs.New(errs.OutOfEntropy, "kernel.LoadSeedFile", rerr)
		}
	}
	return out, nil
}

// StoreSeedFile writes exactly SeedFileNBytes of seed to path via
// hostos, creating it if necessary and setting mode 0600 owned by
// uid=gid=0.
func StoreSeedFile(hostos HostOS, path string, seed []byte) error {
	if len(seed) != SeedFileNBytes {
		return errs.New(errs.Config, "kernel.StoreSeedFile", nil)
	}

	f, err := hostos.Open(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, seedFileMode)
	if err != nil {
		return errs.New(errs.Internal, "kernel.StoreSeedFile", err)
	}
	defer f.Close()

	if err := writeFull(f, seed); err != nil {
		return errs.New(errs.Internal, "kernel.StoreSeedFile", err)
	}
	if err := hostos.Fchmod(f, seedFileMode); err != nil {
		return errs.New(errs.Internal, "kernel.StoreSeedFile", err)
	}
	if err := hostos.Fchown(f, 0, 0); err != nil {
		return errs.New(errs.Internal, "kernel.StoreSeedFile", err)
	}
	return nil
}

// writeFull writes every byte of p to w, looping over short writes —
// mirrors io.ReadFull for the write side, which the stdlib does not
// provide.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
