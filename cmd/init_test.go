package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/workspace"
)

func TestStarterConfig(t *testing.T) {
	cfg := StarterConfig(&config.Config{}, []workspace.Definition{
		{Name: "web", Path: "apps/web"},
		{Name: "api", Path: "apps/api"},
	})

	want := &config.Config{
		EnvDir:          "./",
		SyncEnvsTo:      []string{"web", "api"},
		EnvFilePatterns: config.DefaultEnvFilePatterns,
		MergeBehaviour:  config.MergeAppend,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("StarterConfig() mismatch (-want +got):\n%s", diff)
	}

	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate(StarterConfig()) error = %v", err)
	}
}

func TestStarterConfig_KeepsWorkspacesOverride(t *testing.T) {
	existing := &config.Config{Workspaces: []string{"apps/web"}, EnvDir: "env"}

	cfg := StarterConfig(existing, []workspace.Definition{{Name: "web", Path: "apps/web"}})

	if diff := cmp.Diff([]string{"apps/web"}, cfg.Workspaces); diff != "" {
		t.Errorf("Workspaces mismatch (-want +got):\n%s", diff)
	}
	if cfg.EnvDir != config.DefaultEnvDir {
		t.Errorf("EnvDir = %q, want %q", cfg.EnvDir, config.DefaultEnvDir)
	}

	existing.Workspaces[0] = "changed"
	if cfg.Workspaces[0] != "apps/web" {
		t.Error("StarterConfig() shares the workspaces slice with its input")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		configPath string
		format     string
		want       string
	}{
		{"workspace-env.json", config.FormatJSON, "workspace-env.json"},
		{"workspace-env.json", config.FormatTOML, "workspace-env.toml"},
		{"config/workspace-env.yml", config.FormatYAML, "config/workspace-env.yml"},
		{"config/workspace-env.yml", config.FormatJSON, "config/workspace-env.json"},
		{"workspace-env", config.FormatJSON, "workspace-env.json"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.configPath, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.configPath, tt.format, got, tt.want)
		}
	}
}
