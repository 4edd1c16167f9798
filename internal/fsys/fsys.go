// Package fsys is the filesystem capability used by discovery and sync. It
// wraps a go-billy filesystem rooted at the project root so every path in a
// run is root-relative, and the same code runs against memfs in tests.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FilePerm is the mode used when a file is created.
const FilePerm os.FileMode = 0644

// FS is a root-relative filesystem.
type FS struct {
	fs     billy.Filesystem
	osRoot string
}

// New wraps an arbitrary billy filesystem. OSPath is unavailable on the
// result.
func New(b billy.Filesystem) *FS {
	return &FS{fs: b}
}

// NewOS returns an FS rooted at dir on the host filesystem.
func NewOS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}

	return &FS{fs: osfs.New(abs), osRoot: abs}, nil
}

// NewMemory returns an empty in-memory FS that is safe for concurrent use.
func NewMemory() *FS {
	return New(newLockedFS(memfs.New()))
}

// Raw returns the underlying billy filesystem.
func (f *FS) Raw() billy.Filesystem {
	return f.fs
}

// OSPath resolves a root-relative path to a host path that cannot escape the
// root. Fails for filesystems not created with NewOS.
func (f *FS) OSPath(rel string) (string, error) {
	if f.osRoot == "" {
		return "", errors.New("fsys: filesystem is not backed by the host")
	}

	p, err := securejoin.SecureJoin(f.osRoot, rel)
	if err != nil {
		return "", fmt.Errorf("fsys: join %q: %w", rel, err)
	}
	return p, nil
}

// ReadFile reads the named file.
func (f *FS) ReadFile(name string) ([]byte, error) {
	data, err := util.ReadFile(f.fs, name)
	if err != nil {
		return nil, fmt.Errorf("fsys: readfile %q: %w", name, err)
	}
	return data, nil
}

// WriteFile truncates or creates the named file. The mode of an existing file
// is left unchanged.
func (f *FS) WriteFile(name string, data []byte) error {
	if err := util.WriteFile(f.fs, name, data, FilePerm); err != nil {
		return fmt.Errorf("fsys: writefile %q: %w", name, err)
	}
	return nil
}

// Exists reports whether the path exists. Errors other than "not exist" are
// returned.
func (f *FS) Exists(name string) (bool, error) {
	_, err := f.fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("fsys: stat %q: %w", name, err)
	}
}

// IsDir reports whether the path exists and is a directory.
func (f *FS) IsDir(name string) bool {
	info, err := f.fs.Stat(name)
	return err == nil && info.IsDir()
}

// IsFile reports whether the path exists and is a regular file.
func (f *FS) IsFile(name string) bool {
	info, err := f.fs.Stat(name)
	return err == nil && info.Mode().IsRegular()
}
