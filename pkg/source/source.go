// Package source identifies the model a server instance exposes: a file on
// disk, an in-memory buffer, or both (a buffer published under a file name).
package source

import (
	"os"
	"path/filepath"

	"github.com/vango-dev/modelview/internal/errors"
)

// Source is the model served by one instance.
//
// Path names the model. Data, when non-nil, is served in place of the file
// whose base name matches Path. Both empty means the instance only serves the
// viewer shell.
type Source struct {
	// Path is the model file path, or just a display name for buffers.
	Path string

	// Data is the in-memory model payload.
	Data []byte

	// Detached sources never resolve sibling files on disk.
	Detached bool
}

// FromFile returns a file-backed source, failing if the file does not exist.
func FromFile(path string) (Source, error) {
	src := Source{Path: path}
	if err := src.Validate(); err != nil {
		return Source{}, err
	}
	return src, nil
}

// FromBytes returns a buffer-backed source published under name.
// The buffer is copied.
func FromBytes(name string, data []byte) Source {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Source{Path: name, Data: buf}
}

// HasModel reports whether a model is configured at all.
func (s Source) HasModel() bool {
	return s.Path != "" || s.Data != nil
}

// Basename returns the file name the model is published under, or "".
func (s Source) Basename() string {
	if s.Path == "" {
		return ""
	}
	return filepath.Base(s.Path)
}

// Folder returns the directory used to resolve sibling files: the directory
// containing Path, "." when Path has no directory part, or "" when there is
// no path or the source is detached.
func (s Source) Folder() string {
	if s.Path == "" || s.Detached {
		return ""
	}
	return filepath.Dir(s.Path)
}

// Validate checks that a file-backed source without a buffer exists on disk.
func (s Source) Validate() error {
	if s.Data != nil || s.Path == "" {
		return nil
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.CodeModelNotFound).
				WithDetail("No such file: " + s.Path).
				WithSuggestion("Check the path or pass the model data directly")
		}
		return errors.New(errors.CodeModelNotFound).Wrap(err)
	}
	if info.IsDir() {
		return errors.New(errors.CodeModelNotFound).
			WithDetail(s.Path + " is a directory")
	}
	return nil
}

// Clone returns a copy that shares no memory with s.
func (s Source) Clone() Source {
	if s.Data != nil {
		buf := make([]byte, len(s.Data))
		copy(buf, s.Data)
		s.Data = buf
	}
	return s
}

// String describes the source for log lines.
func (s Source) String() string {
	switch {
	case s.Path != "":
		return s.Path
	case s.Data != nil:
		return "<memory>"
	default:
		return "<none>"
	}
}
