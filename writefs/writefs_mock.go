package writefs

import (
	"bytes"
	"io"
	"io/fs"
)

type (
	// FSMock implements FS in memory for tests
	FSMock struct {
		Files map[string]string
	}

	fsFileMock struct {
		name string
		b    *bytes.Buffer
		f    *FSMock
	}
)

func NewFSMock() *FSMock {
	return &FSMock{
		Files: map[string]string{},
	}
}

func (f *FSMock) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	return &fsFileMock{
		name: name,
		b:    &bytes.Buffer{},
		f:    f,
	}, nil
}

func (w *fsFileMock) Write(p []byte) (n int, err error) {
	return w.b.Write(p)
}

// Close commits the written bytes to the mock file map
func (w *fsFileMock) Close() error {
	w.f.Files[w.name] = w.b.String()
	return nil
}
