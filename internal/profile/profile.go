// Package profile resolves the configured profiles against the discovered
// workspaces into the fully defaulted form the syncer executes.
package profile

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/workspace"
)

// BaselineName labels the profile built from the top-level config fields.
const BaselineName = "default"

// Profile is a resolved unit of sync work: copy the env files matching
// EnvFilePatterns inside EnvDir into every workspace, combining with existing
// files according to MergeBehaviour.
type Profile struct {
	Name            string                 `json:"name"`
	Workspaces      []workspace.Definition `json:"workspaces"`
	EnvDir          string                 `json:"envDir"`
	EnvFilePatterns []string               `json:"envFilePatterns"`
	MergeBehaviour  config.MergeBehaviour  `json:"mergeBehaviour"`
}

// Baseline applies the config defaults directly. Workspaces are restricted to
// syncEnvsTo when it is set. Inputs are never mutated.
func Baseline(cfg *config.Config, defs []workspace.Definition) Profile {
	p := Profile{
		Name:            BaselineName,
		EnvDir:          config.DefaultEnvDir,
		EnvFilePatterns: copyStrings(config.DefaultEnvFilePatterns),
		MergeBehaviour:  config.DefaultMergeBehaviour,
	}

	if cfg.EnvDir != "" {
		p.EnvDir = cfg.EnvDir
	}
	if cfg.EnvFilePatterns != nil {
		p.EnvFilePatterns = copyStrings(cfg.EnvFilePatterns)
	}
	if cfg.MergeBehaviour != "" {
		p.MergeBehaviour = cfg.MergeBehaviour
	}

	if cfg.SyncEnvsTo == nil {
		p.Workspaces = copyDefinitions(defs)
		return p
	}

	for _, name := range cfg.SyncEnvsTo {
		if !containsName(defs, name) {
			log.Warn().Str("workspace", name).Msg("syncEnvsTo names an unknown workspace")
		}
	}
	p.Workspaces = filterByName(defs, cfg.SyncEnvsTo)

	return p
}

// Derive returns the ordered list of profiles to execute. Without a profiles
// key that is the baseline alone; otherwise every profile is validated against
// the discovered names before any is resolved, and the baseline only supplies
// defaults.
func Derive(cfg *config.Config, defs []workspace.Definition) ([]Profile, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	baseline := Baseline(cfg, defs)

	if cfg.Profiles == nil {
		return []Profile{baseline}, nil
	}

	if err := Validate(cfg.Profiles, defs); err != nil {
		return nil, err
	}

	if len(cfg.Profiles) == 0 {
		log.Warn().Msg("profiles is empty, nothing will be synced")
	}

	profiles := make([]Profile, 0, len(cfg.Profiles))
	for i, spec := range cfg.Profiles {
		profiles = append(profiles, resolve(spec, i, baseline, defs))
	}

	return profiles, nil
}

// Validate reports the first workspace name, in profile order, that is not
// among the discovered workspaces.
func Validate(specs []config.ProfileSpec, defs []workspace.Definition) error {
	for i, spec := range specs {
		for _, name := range spec.Workspaces {
			if containsName(defs, name) {
				continue
			}
			return apperr.Newf(apperr.CodeUnknownWorkspace, "unknown workspace %q", name).
				WithDetail("profile", Label(spec, i)).
				WithDetail("workspace", name)
		}
	}
	return nil
}

// Label returns the display name of the i-th profile spec.
func Label(spec config.ProfileSpec, i int) string {
	if spec.Name != "" {
		return spec.Name
	}
	return fmt.Sprintf("profiles[%d]", i)
}

// resolve fills the unset fields of spec from the baseline.
func resolve(spec config.ProfileSpec, i int, baseline Profile, defs []workspace.Definition) Profile {
	p := Profile{
		Name:            Label(spec, i),
		Workspaces:      filterByName(defs, spec.Workspaces),
		EnvDir:          baseline.EnvDir,
		EnvFilePatterns: copyStrings(baseline.EnvFilePatterns),
		MergeBehaviour:  baseline.MergeBehaviour,
	}

	if spec.EnvDir != "" {
		p.EnvDir = spec.EnvDir
	}
	if spec.EnvFilePatterns != nil {
		p.EnvFilePatterns = copyStrings(spec.EnvFilePatterns)
	}
	if spec.MergeBehaviour != "" {
		p.MergeBehaviour = spec.MergeBehaviour
	}

	return p
}

// filterByName keeps the definitions whose name is listed, in discovery order.
func filterByName(defs []workspace.Definition, names []string) []workspace.Definition {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	result := make([]workspace.Definition, 0, len(defs))
	for _, def := range defs {
		if wanted[def.Name] {
			result = append(result, def)
		}
	}
	return result
}

func containsName(defs []workspace.Definition, name string) bool {
	for _, def := range defs {
		if def.Name == name {
			return true
		}
	}
	return false
}

func copyStrings(src []string) []string {
	return append(make([]string, 0, len(src)), src...)
}

func copyDefinitions(src []workspace.Definition) []workspace.Definition {
	return append(make([]workspace.Definition, 0, len(src)), src...)
}
