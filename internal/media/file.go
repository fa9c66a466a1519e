package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a candidate upload: a name, a declared media type, a declared
// size and a way to (re)open its bytes. The body may be opened more than
// once so that a transfer can be retried.
type File struct {
	Name string
	Type string
	Size int64

	open func() (io.ReadCloser, error)
}

// NewFile wraps in-memory bytes.
func NewFile(name, mimeType string, data []byte) File {
	return File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// OpenLocalFile describes a file on disk. The declared type is sniffed from
// the file contents since the filesystem carries none.
func OpenLocalFile(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return File{
		Name: filepath.Base(path),
		Type: mt.String(),
		Size: fi.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Open returns a fresh reader over the file body.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("file has no body")
	}
	return f.open()
}

// Kind classifies the file by its declared type.
func (f File) Kind() Kind {
	return Classify(f.Type)
}

// ReadAll loads the body into memory.
func (f File) ReadAll() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
