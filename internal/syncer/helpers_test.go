package syncer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"

	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/fsys"
	"go.dot.industries/workspace-env/internal/profile"
	"go.dot.industries/workspace-env/internal/workspace"
)

var errDiskFull = errors.New("disk full")

// failingFS is a test double that rejects writes to selected paths.
type failingFS struct {
	billy.Filesystem
	failWrites map[string]bool
}

func (f *failingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 && f.failWrites[filepath.Clean(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: errDiskFull}
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

// writeTestFile is a test helper that writes content to a path on files.
func writeTestFile(t *testing.T, files *fsys.FS, path string, content string) {
	t.Helper()
	if err := files.WriteFile(path, []byte(content)); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
}

func mkdir(t *testing.T, files *fsys.FS, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := files.Raw().MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create dir %s: %v", dir, err)
		}
	}
}

func readTestFile(t *testing.T, files *fsys.FS, path string) string {
	t.Helper()
	data, err := files.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func assertMissing(t *testing.T, files *fsys.FS, path string) {
	t.Helper()
	ok, err := files.Exists(path)
	if err != nil {
		t.Fatalf("Exists(%s) error = %v", path, err)
	}
	if ok {
		t.Errorf("%s exists, want it untouched", path)
	}
}

func ws(names ...string) []workspace.Definition {
	defs := make([]workspace.Definition, 0, len(names))
	for _, n := range names {
		defs = append(defs, workspace.Definition{Name: n, Path: n})
	}
	return defs
}

func newProfile(name, envDir string, mode config.MergeBehaviour, workspaces []workspace.Definition) profile.Profile {
	return profile.Profile{
		Name:            name,
		Workspaces:      workspaces,
		EnvDir:          envDir,
		EnvFilePatterns: []string{".env"},
		MergeBehaviour:  mode,
	}
}
