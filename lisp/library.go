// Copyright © 2026 The Spill authors

package lisp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SourceLibrary locates source files by name.
type SourceLibrary interface {
	// LoadSource returns the display name, the resolved path and the
	// contents of the source file identified by loc.
	LoadSource(loc string) (name string, path string, src []byte, err error)
}

// ErrSourceNotFound is returned (wrapped) by a SourceLibrary which has no
// source for the requested location.
var ErrSourceNotFound = errors.New("source not found")

// RelativeFileSystemLibrary loads source files from the host file system.
// When RootDir is not empty relative locations are resolved against it and
// files outside of it cannot be loaded.  Sources which do not exist are
// loaded from Fallback, when one is set.
type RelativeFileSystemLibrary struct {
	RootDir  string
	Fallback SourceLibrary
}

var _ SourceLibrary = (*RelativeFileSystemLibrary)(nil)

// LoadSource implements SourceLibrary.
func (lib *RelativeFileSystemLibrary) LoadSource(loc string) (string, string, []byte, error) {
	p := loc
	if lib.RootDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(lib.RootDir, p)
	}
	p, err := filepath.Abs(p)
	if err != nil {
		return "", "", nil, err
	}
	if lib.RootDir != "" {
		root, err := filepath.Abs(lib.RootDir)
		if err != nil {
			return "", "", nil, err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", "", nil, fmt.Errorf("path outside of library root: %s", loc)
		}
	}
	src, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		if lib.Fallback != nil {
			return lib.Fallback.LoadSource(loc)
		}
		return "", "", nil, fmt.Errorf("%w: %s", ErrSourceNotFound, loc)
	}
	if err != nil {
		return "", "", nil, err
	}
	return filepath.Base(p), p, src, nil
}

// SearchPathLibrary looks for a source file in each directory of Paths, in
// order.  If no directory contains the file the Fallback library is
// consulted, when one is set.
type SearchPathLibrary struct {
	Paths    []string
	Fallback SourceLibrary
}

var _ SourceLibrary = (*SearchPathLibrary)(nil)

// LoadSource implements SourceLibrary.
func (lib *SearchPathLibrary) LoadSource(loc string) (string, string, []byte, error) {
	if filepath.IsAbs(loc) {
		return (&RelativeFileSystemLibrary{}).LoadSource(loc)
	}
	for _, dir := range lib.Paths {
		p := filepath.Join(dir, loc)
		src, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", "", nil, err
		}
		return filepath.Base(p), p, src, nil
	}
	if lib.Fallback != nil {
		return lib.Fallback.LoadSource(loc)
	}
	return "", "", nil, fmt.Errorf("%w: %s", ErrSourceNotFound, loc)
}

// FSLibrary loads source files from an fs.FS, such as an embed.FS.
type FSLibrary struct {
	FS fs.FS
	// Prefix is prepended to the path reported for loaded files.
	Prefix string
}

var _ SourceLibrary = (*FSLibrary)(nil)

// LoadSource implements SourceLibrary.
func (lib *FSLibrary) LoadSource(loc string) (string, string, []byte, error) {
	name := path.Clean(filepath.ToSlash(loc))
	src, err := fs.ReadFile(lib.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil, fmt.Errorf("%w: %s", ErrSourceNotFound, loc)
	}
	if err != nil {
		return "", "", nil, err
	}
	return path.Base(name), lib.Prefix + name, src, nil
}
