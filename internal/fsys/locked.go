package fsys

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
)

// lockedFS serializes every call that touches the directory tree of a billy
// filesystem. memfs keeps its tree in unguarded maps while file contents
// carry their own lock, so guarding the tree is enough for concurrent use.
type lockedFS struct {
	mu sync.Mutex
	fs billy.Filesystem
}

var _ billy.Filesystem = (*lockedFS)(nil)

func newLockedFS(fs billy.Filesystem) *lockedFS {
	return &lockedFS{fs: fs}
}

func (l *lockedFS) Create(filename string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Create(filename)
}

func (l *lockedFS) Open(filename string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Open(filename)
}

func (l *lockedFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.OpenFile(filename, flag, perm)
}

func (l *lockedFS) Stat(filename string) (os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Stat(filename)
}

func (l *lockedFS) Rename(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Rename(oldpath, newpath)
}

func (l *lockedFS) Remove(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Remove(filename)
}

func (l *lockedFS) Join(elem ...string) string {
	return l.fs.Join(elem...)
}

func (l *lockedFS) TempFile(dir, prefix string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.TempFile(dir, prefix)
}

func (l *lockedFS) ReadDir(path string) ([]os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.ReadDir(path)
}

func (l *lockedFS) MkdirAll(filename string, perm os.FileMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.MkdirAll(filename, perm)
}

func (l *lockedFS) Lstat(filename string) (os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Lstat(filename)
}

func (l *lockedFS) Symlink(target, link string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Symlink(target, link)
}

func (l *lockedFS) Readlink(link string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Readlink(link)
}

// Chroot returns a view rooted at path that still goes through the lock.
func (l *lockedFS) Chroot(path string) (billy.Filesystem, error) {
	return chroot.New(l, path), nil
}

func (l *lockedFS) Root() string {
	return l.fs.Root()
}

// Capabilities reports the capabilities of the wrapped filesystem.
func (l *lockedFS) Capabilities() billy.Capability {
	return billy.Capabilities(l.fs)
}
