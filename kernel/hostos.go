package kernel

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// HostOS is the narrow slice of OS surface the kernel wiring needs to
// persist and load the seed file: a trait so tests can swap a real
// filesystem for an in-memory one.
type HostOS interface {
	Open(path string, flag int, perm os.FileMode) (File, error)
	Fchmod(f File, mode os.FileMode) error
	Fchown(f File, uid, gid int) error
}

// File is the minimal handle HostOS hands back: enough to read, write,
// and close, without committing to *os.File so mockHostOS can satisfy
// it with an in-memory buffer.
type File interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// realHostOS is the production HostOS, backed by the stdlib os package
// and golang.org/x/sys/unix for the uid/gid=0 ownership requirement.
type realHostOS struct{}

// NewRealHostOS returns the production HostOS implementation.
func NewRealHostOS() HostOS {
	return realHostOS{}
}

func (realHostOS) Open(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (realHostOS) Fchmod(f File, mode os.FileMode) error {
	osFile, ok := f.(*os.File)
	if !ok {
		return nil
	}
	return osFile.Chmod(mode)
}

func (realHostOS) Fchown(f File, uid, gid int) error {
	osFile, ok := f.(*os.File)
	if !ok {
		return nil
	}
	return unix.Fchown(int(osFile.Fd()), uid, gid)
}

// mockHostOS is an in-memory HostOS for tests: Open returns a handle
// backed by a byte slice keyed on path, Read/Write on that handle
// operate one byte at a time to exercise the seed-file loader's
// chunking logic.
type mockHostOS struct {
	files map[string]*mockFile
}

// newMockHostOS returns an empty in-memory HostOS.
func newMockHostOS() *mockHostOS {
	return &mockHostOS{files: make(map[string]*mockFile)}
}

// seed preloads path with contents, as if written by a previous
// process, for load-path tests.
func (m *mockHostOS) seed(path string, contents []byte) {
	buf := make([]byte, len(contents))
	copy(buf, contents)
	m.files[path] = &mockFile{data: buf}
}

// contents returns what was last written to path, for store-path
// assertions.
func (m *mockHostOS) contents(path string) ([]byte, bool) {
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return append([]byte{}, f.data...), true
}

func (m *mockHostOS) Open(path string, flag int, perm os.FileMode) (File, error) {
	f, ok := m.files[path]
	if !ok {
		if flag&os.O_CREATE == 0 {
			return nil, os.ErrNotExist
		}
		f = &mockFile{}
		m.files[path] = f
	}
	if flag&os.O_TRUNC != 0 {
		f.data = nil
	}
	f.pos = 0
	return f, nil
}

func (m *mockHostOS) Fchmod(f File, mode os.FileMode) error {
	mf, ok := f.(*mockFile)
	if !ok {
		return nil
	}
	mf.mode = mode
	return nil
}

func (m *mockHostOS) Fchown(f File, uid, gid int) error {
	mf, ok := f.(*mockFile)
	if !ok {
		return nil
	}
	mf.uid, mf.gid = uid, gid
	return nil
}

// mockFile is a File backed by an in-memory byte slice. Read and
// Write only ever move one byte per call, deliberately, so callers
// that assume a single Read/Write fills a whole buffer are caught by
// tests.
type mockFile struct {
	data []byte
	pos  int
	mode os.FileMode
	uid  int
	gid  int
}

func (f *mockFile) Read(p []byte) (int, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = f.data[f.pos]
	f.pos++
	return 1, nil
}

func (f *mockFile) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if f.pos < len(f.data) {
		f.data[f.pos] = p[0]
	} else {
		f.data = append(f.data, p[0])
	}
	f.pos++
	return 1, nil
}

func (f *mockFile) Close() error {
	return nil
}
