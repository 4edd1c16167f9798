package profile

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/workspace"
)

var discovered = []workspace.Definition{
	{Name: "frontend", Path: "apps/frontend"},
	{Name: "backend", Path: "apps/backend"},
	{Name: "utils", Path: "libs/utils"},
}

func TestDerive_BaselineOnly(t *testing.T) {
	cfg := &config.Config{EnvFilePatterns: config.DefaultEnvFilePatterns}

	got, err := Derive(cfg, discovered)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	want := []Profile{{
		Name:            BaselineName,
		Workspaces:      discovered,
		EnvDir:          "./",
		EnvFilePatterns: config.DefaultEnvFilePatterns,
		MergeBehaviour:  config.MergeAppend,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_BaselineFromConfig(t *testing.T) {
	cfg := &config.Config{
		EnvDir:          "env",
		EnvFilePatterns: []string{".env"},
		MergeBehaviour:  config.MergeOverwrite,
		SyncEnvsTo:      []string{"utils", "frontend"},
	}

	got, err := Derive(cfg, discovered)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	want := []Profile{{
		Name: BaselineName,
		Workspaces: []workspace.Definition{
			{Name: "frontend", Path: "apps/frontend"},
			{Name: "utils", Path: "libs/utils"},
		},
		EnvDir:          "env",
		EnvFilePatterns: []string{".env"},
		MergeBehaviour:  config.MergeOverwrite,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseline_SyncEnvsToUnknownNameIgnored(t *testing.T) {
	cfg := &config.Config{SyncEnvsTo: []string{"frontend", "ghost"}}

	got := Baseline(cfg, discovered)

	if diff := cmp.Diff([]string{"frontend"}, workspace.Names(got.Workspaces)); diff != "" {
		t.Errorf("Baseline() workspaces mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseline_EmptySyncEnvsTo(t *testing.T) {
	got := Baseline(&config.Config{SyncEnvsTo: []string{}}, discovered)

	if len(got.Workspaces) != 0 {
		t.Errorf("Baseline() workspaces = %v, want none", got.Workspaces)
	}
}

func TestDerive_ProfilesInheritBaseline(t *testing.T) {
	cfg := &config.Config{
		EnvDir:         "env",
		MergeBehaviour: config.MergePrepend,
		SyncEnvsTo:     []string{"utils"},
		Profiles: []config.ProfileSpec{
			{Name: "web", Workspaces: []string{"frontend"}, EnvDir: "frontend-env"},
			{Workspaces: []string{"backend", "frontend"}, MergeBehaviour: config.MergeOverwrite, EnvFilePatterns: []string{"*.env"}},
		},
	}

	got, err := Derive(cfg, discovered)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	want := []Profile{
		{
			Name:            "web",
			Workspaces:      []workspace.Definition{{Name: "frontend", Path: "apps/frontend"}},
			EnvDir:          "frontend-env",
			EnvFilePatterns: config.DefaultEnvFilePatterns,
			MergeBehaviour:  config.MergePrepend,
		},
		{
			Name: "profiles[1]",
			Workspaces: []workspace.Definition{
				{Name: "frontend", Path: "apps/frontend"},
				{Name: "backend", Path: "apps/backend"},
			},
			EnvDir:          "env",
			EnvFilePatterns: []string{"*.env"},
			MergeBehaviour:  config.MergeOverwrite,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_UnknownWorkspace(t *testing.T) {
	cfg := &config.Config{
		Profiles: []config.ProfileSpec{
			{Workspaces: []string{"frontend"}},
			{Name: "shared", Workspaces: []string{"frontend", "mobile"}},
		},
	}

	got, err := Derive(cfg, discovered)
	if !errors.Is(err, apperr.ErrUnknownWorkspace) {
		t.Fatalf("Derive() error = %v, want UnknownWorkspace", err)
	}
	if got != nil {
		t.Errorf("Derive() = %v, want no profiles", got)
	}

	msg := err.Error()
	for _, want := range []string{"mobile", "shared"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Derive() error = %q, want it to mention %q", msg, want)
		}
	}
}

func TestDerive_EmptyProfiles(t *testing.T) {
	got, err := Derive(&config.Config{Profiles: []config.ProfileSpec{}}, discovered)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Derive() = %v, want no profiles", got)
	}
}

func TestDerive_DoesNotMutateInputs(t *testing.T) {
	patterns := []string{".env"}
	defs := append([]workspace.Definition(nil), discovered...)
	cfg := &config.Config{EnvFilePatterns: patterns}

	got, err := Derive(cfg, defs)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	got[0].EnvFilePatterns[0] = "changed"
	got[0].Workspaces[0].Name = "changed"

	if patterns[0] != ".env" {
		t.Errorf("config patterns mutated to %q", patterns[0])
	}
	if defs[0].Name != "frontend" {
		t.Errorf("definitions mutated to %q", defs[0].Name)
	}
}

func TestDerive_NilConfig(t *testing.T) {
	if _, err := Derive(nil, discovered); err == nil {
		t.Fatal("Derive() expected error for nil config")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(config.ProfileSpec{Name: "web"}, 3); got != "web" {
		t.Errorf("Label() = %q, want %q", got, "web")
	}
	if got := Label(config.ProfileSpec{}, 3); got != "profiles[3]" {
		t.Errorf("Label() = %q, want %q", got, "profiles[3]")
	}
}
