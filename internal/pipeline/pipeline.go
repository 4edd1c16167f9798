// Package pipeline wires config loading, workspace discovery, profile
// derivation and sync into the single run the CLI performs. It takes explicit
// parameters instead of relying on package-level Cobra flag variables.
package pipeline

import (
	"context"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/fsys"
	"go.dot.industries/workspace-env/internal/profile"
	"go.dot.industries/workspace-env/internal/syncer"
	"go.dot.industries/workspace-env/internal/workspace"
)

// Plan is everything a run resolves before touching the filesystem.
type Plan struct {
	Config     *config.Config         `json:"config"`
	Workspaces []workspace.Definition `json:"workspaces"`
	Profiles   []profile.Profile      `json:"profiles"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxConcurrency bounds concurrent filesystem work in discovery and sync.
// Values less than 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxConcurrency = n
		}
	}
}

// WithDryRun computes writes without performing them.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// Pipeline runs one sync against a project root.
type Pipeline struct {
	files          *fsys.FS
	configPath     string
	maxConcurrency int
	dryRun         bool
}

// New creates a Pipeline. configPath is relative to the root of files; empty
// selects the default file name.
func New(files *fsys.FS, configPath string, opts ...Option) *Pipeline {
	if configPath == "" {
		configPath = config.DefaultFileName
	}

	p := &Pipeline{
		files:      files,
		configPath: filepath.ToSlash(configPath),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Files returns the project filesystem.
func (p *Pipeline) Files() *fsys.FS {
	return p.files
}

// ConfigPath returns the root-relative config file path.
func (p *Pipeline) ConfigPath() string {
	return p.configPath
}

// Load reads the config, discovers workspaces and derives profiles. Every
// validation failure surfaces here, before any write.
func (p *Pipeline) Load(ctx context.Context) (*Plan, error) {
	cfg, defs, err := p.Discover(ctx)
	if err != nil {
		return nil, err
	}

	profiles, err := profile.Derive(cfg, defs)
	if err != nil {
		return nil, err
	}

	return &Plan{Config: cfg, Workspaces: defs, Profiles: profiles}, nil
}

// Discover reads the config and discovers workspaces, honouring the config's
// workspaces override. Profiles are not derived.
func (p *Pipeline) Discover(ctx context.Context) (*config.Config, []workspace.Definition, error) {
	cfg, err := config.Load(p.files, p.configPath)
	if err != nil {
		return nil, nil, err
	}

	defs, err := workspace.NewDiscoverer(p.files, p.discoveryOptions()...).Discover(ctx, cfg.Workspaces)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("count", len(defs)).Strs("workspaces", workspace.Names(defs)).Msg("discovered workspaces")

	return cfg, defs, nil
}

// Writes returns the writes plan would perform, without reading destinations.
func (p *Pipeline) Writes(ctx context.Context, plan *Plan) ([]syncer.Write, error) {
	return p.executor().Plan(ctx, plan.Profiles)
}

// Run loads the plan and executes it. The plan is returned whenever loading
// succeeded, even if the sync then failed.
func (p *Pipeline) Run(ctx context.Context) (*Plan, *syncer.Report, error) {
	plan, err := p.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	report, err := p.executor().Execute(ctx, plan.Profiles)
	return plan, report, err
}

// WatchPaths returns the root-relative directories whose changes should
// trigger a new run: the config file's directory, the project root and each
// profile's env directory. plan may be nil.
func (p *Pipeline) WatchPaths(plan *Plan) []string {
	paths := []string{path.Dir(p.configPath), "."}
	if plan != nil {
		for _, prof := range plan.Profiles {
			paths = append(paths, path.Clean(prof.EnvDir))
		}
	}

	seen := make(map[string]bool, len(paths))
	result := make([]string, 0, len(paths))
	for _, dir := range paths {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		result = append(result, dir)
	}

	return result
}

func (p *Pipeline) executor() *syncer.Executor {
	opts := []syncer.Option{syncer.WithDryRun(p.dryRun)}
	if p.maxConcurrency > 0 {
		opts = append(opts, syncer.WithMaxConcurrency(p.maxConcurrency))
	}
	return syncer.New(p.files, opts...)
}

func (p *Pipeline) discoveryOptions() []workspace.Option {
	if p.maxConcurrency > 0 {
		return []workspace.Option{workspace.WithMaxConcurrency(p.maxConcurrency)}
	}
	return nil
}
