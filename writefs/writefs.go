// Package writefs abstracts writing rendered statement output to files.
package writefs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"xorkevin.dev/kerrors"
)

const (
	// OutputFileMode is the mode of created output files
	OutputFileMode fs.FileMode = 0o644
	// OutputFileFlag truncates any existing output file
	OutputFileFlag = os.O_WRONLY | os.O_TRUNC | os.O_CREATE
)

type (
	// FS is a file system that may be written to
	FS interface {
		OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error)
	}

	// OS implements FS with the os file system
	OS struct {
		Base string
	}
)

func NewOS(base string) *OS {
	return &OS{
		Base: base,
	}
}

func (o *OS) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	if !fs.ValidPath(name) {
		return nil, kerrors.WithMsg(fs.ErrInvalid, "Invalid output path")
	}
	path := filepath.Join(o.Base, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, kerrors.WithMsg(err, "Failed to mkdir")
	}
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to open output file")
	}
	return f, nil
}
