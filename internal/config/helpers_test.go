package config

import (
	"testing"

	"go.dot.industries/workspace-env/internal/fsys"
)

// writeTestFile is a test helper that writes content to a path on files.
func writeTestFile(t *testing.T, files *fsys.FS, path string, content string) {
	t.Helper()
	if err := files.WriteFile(path, []byte(content)); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
}
