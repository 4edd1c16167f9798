package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/fsys"
	"go.dot.industries/workspace-env/internal/profile"
	"go.dot.industries/workspace-env/internal/workspace"
)

// writeTestFile is a test helper that writes content to a path on files.
func writeTestFile(t *testing.T, files *fsys.FS, path string, content string) {
	t.Helper()
	if err := files.WriteFile(path, []byte(content)); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
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
	if ok, _ := files.Exists(path); ok {
		t.Errorf("%s exists, want it untouched", path)
	}
}

// newMonorepo lays out three workspaces under apps/.
func newMonorepo(t *testing.T, config string) *fsys.FS {
	t.Helper()
	files := fsys.NewMemory()
	writeTestFile(t, files, "package.json", `{"name": "root", "workspaces": ["apps/*"]}`)
	for _, name := range []string{"frontend", "backend", "utils"} {
		writeTestFile(t, files, "apps/"+name+"/package.json", `{"name": "`+name+`"}`)
	}
	if config != "" {
		writeTestFile(t, files, "workspace-env.json", config)
	}
	return files
}

func TestRun_SyncEnvsTo(t *testing.T) {
	files := fsys.NewMemory()
	writeTestFile(t, files, "package.json", `{"workspaces": ["packages/*"]}`)
	writeTestFile(t, files, "packages/no/package.json", `{"name": "no"}`)
	writeTestFile(t, files, "packages/yes/package.json", `{"name": "yes"}`)
	writeTestFile(t, files, "env/.env", "foo=bar")
	writeTestFile(t, files, "workspace-env.json", `{"envDir": "env", "envFilePatterns": [".env"], "syncEnvsTo": ["yes"]}`)

	plan, _, err := New(files, "").Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(plan.Profiles) != 1 || plan.Profiles[0].Name != profile.BaselineName {
		t.Errorf("Profiles = %+v, want the baseline alone", plan.Profiles)
	}
	if got := readTestFile(t, files, "packages/yes/.env"); got != "foo=bar" {
		t.Errorf("packages/yes/.env = %q, want %q", got, "foo=bar")
	}
	assertMissing(t, files, "packages/no/.env")
}

func TestRun_TwoProfiles(t *testing.T) {
	files := newMonorepo(t, `{
		"envFilePatterns": [".env"],
		"profiles": [
			{"workspaces": ["frontend"], "envDir": "frontend-env"},
			{"workspaces": ["frontend", "backend"], "envDir": "common-env"}
		]
	}`)
	writeTestFile(t, files, "frontend-env/.env", "frontend-only=foo")
	writeTestFile(t, files, "common-env/.env", "common=foo")

	if _, _, err := New(files, "").Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readTestFile(t, files, "apps/frontend/.env"); got != "frontend-only=foo\ncommon=foo" {
		t.Errorf("apps/frontend/.env = %q, want %q", got, "frontend-only=foo\ncommon=foo")
	}
	if got := readTestFile(t, files, "apps/backend/.env"); got != "common=foo" {
		t.Errorf("apps/backend/.env = %q, want %q", got, "common=foo")
	}
	assertMissing(t, files, "apps/utils/.env")
}

func TestRun_UnknownWorkspaceWritesNothing(t *testing.T) {
	files := newMonorepo(t, `{
		"envDir": "env",
		"profiles": [
			{"workspaces": ["frontend"]},
			{"workspaces": ["backend", "mobile"]}
		]
	}`)
	writeTestFile(t, files, "env/.env", "A=1")

	_, report, err := New(files, "").Run(context.Background())
	if !errors.Is(err, apperr.ErrUnknownWorkspace) {
		t.Fatalf("Run() error = %v, want UnknownWorkspace", err)
	}
	if report != nil {
		t.Errorf("Run() report = %+v, want nil", report)
	}

	for _, name := range []string{"frontend", "backend", "utils"} {
		assertMissing(t, files, "apps/"+name+"/.env")
	}
}

func TestRun_InvalidConfigWritesNothing(t *testing.T) {
	files := newMonorepo(t, `{"envDir": "env", "mergeBehaviour": "merge"}`)
	writeTestFile(t, files, "env/.env", "A=1")

	_, _, err := New(files, "").Run(context.Background())
	if !errors.Is(err, apperr.ErrInvalidConfig) {
		t.Fatalf("Run() error = %v, want InvalidConfig", err)
	}
	assertMissing(t, files, "apps/frontend/.env")
}

func TestRun_DryRun(t *testing.T) {
	files := newMonorepo(t, `{"envDir": "env", "envFilePatterns": [".env"]}`)
	writeTestFile(t, files, "env/.env", "A=1")

	_, report, err := New(files, "", WithDryRun(true)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != 3 {
		t.Errorf("Results = %d, want 3", len(report.Results))
	}
	assertMissing(t, files, "apps/frontend/.env")
}

func TestLoad_ConfigWorkspacesOverride(t *testing.T) {
	files := newMonorepo(t, `{"workspaces": ["apps/utils"]}`)

	plan, err := New(files, "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []workspace.Definition{{Name: "utils", Path: "apps/utils"}}
	if diff := cmp.Diff(want, plan.Workspaces); diff != "" {
		t.Errorf("Workspaces mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_ConfigWorkspacesWithoutDerivingProfiles(t *testing.T) {
	files := newMonorepo(t, `{"workspaces": ["apps/backend"], "syncEnvsTo": ["gone"]}`)

	cfg, defs, err := New(files, "", WithMaxConcurrency(2)).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if diff := cmp.Diff([]string{"apps/backend"}, cfg.Workspaces); diff != "" {
		t.Errorf("Workspaces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"backend"}, workspace.Names(defs)); diff != "" {
		t.Errorf("discovered names mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_InvalidConfig(t *testing.T) {
	files := newMonorepo(t, `{"workspaces": "apps/*"}`)

	if _, _, err := New(files, "").Discover(context.Background()); !errors.Is(err, apperr.ErrInvalidConfig) {
		t.Errorf("Discover() error = %v, want InvalidConfig", err)
	}
}

func TestLoad_TOMLConfigInSubdirectory(t *testing.T) {
	files := newMonorepo(t, "")
	writeTestFile(t, files, "config/workspace-env.toml", "syncEnvsTo = [\"backend\"]\n")

	plan, err := New(files, "config/workspace-env.toml").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff([]string{"backend"}, workspace.Names(plan.Profiles[0].Workspaces)); diff != "" {
		t.Errorf("baseline workspaces mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NoWorkspaces(t *testing.T) {
	files := fsys.NewMemory()
	writeTestFile(t, files, "package.json", `{"name": "solo"}`)

	if _, err := New(files, "").Load(context.Background()); !errors.Is(err, apperr.ErrNoWorkspacesFound) {
		t.Errorf("Load() error = %v, want NoWorkspacesFound", err)
	}
}

func TestWatchPaths(t *testing.T) {
	p := New(fsys.NewMemory(), "config/workspace-env.json")
	plan := &Plan{Profiles: []profile.Profile{
		{EnvDir: "./"},
		{EnvDir: "env/"},
		{EnvDir: "env"},
		{EnvDir: "config"},
	}}

	if diff := cmp.Diff([]string{"config", ".", "env"}, p.WatchPaths(plan)); diff != "" {
		t.Errorf("WatchPaths() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"config", "."}, p.WatchPaths(nil)); diff != "" {
		t.Errorf("WatchPaths(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestWrites(t *testing.T) {
	files := newMonorepo(t, `{"envDir": "env", "syncEnvsTo": ["frontend"]}`)
	writeTestFile(t, files, "env/.env", "A=1")
	writeTestFile(t, files, "env/.env.local", "B=1")

	p := New(files, "")
	plan, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writes, err := p.Writes(context.Background(), plan)
	if err != nil {
		t.Fatalf("Writes() error = %v", err)
	}

	var dests []string
	for _, w := range writes {
		dests = append(dests, w.Destination)
	}
	if diff := cmp.Diff([]string{"apps/frontend/.env", "apps/frontend/.env.local"}, dests); diff != "" {
		t.Errorf("destinations mismatch (-want +got):\n%s", diff)
	}
}
