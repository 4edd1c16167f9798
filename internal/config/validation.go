package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/fsys"
)

const schemaKey = "$schema"

// FromMap converts a decoded config tree into a Config, rejecting values of
// the wrong shape. Every violation is reported in a single InvalidConfig
// error. Unknown keys are ignored.
func FromMap(raw map[string]any) (*Config, error) {
	var issues []string
	cfg := &Config{}

	for key := range raw {
		switch key {
		case "workspaces", "envDir", "syncEnvsTo", "envFilePatterns", "mergeBehaviour", "profiles", schemaKey:
		default:
			log.Debug().Str("key", key).Msg("ignoring unknown config key")
		}
	}

	cfg.Workspaces = stringList(raw, "workspaces", "workspaces", &issues)
	cfg.EnvDir = stringValue(raw, "envDir", "envDir", &issues)
	cfg.SyncEnvsTo = stringList(raw, "syncEnvsTo", "syncEnvsTo", &issues)
	cfg.EnvFilePatterns = stringList(raw, "envFilePatterns", "envFilePatterns", &issues)
	cfg.MergeBehaviour = MergeBehaviour(stringValue(raw, "mergeBehaviour", "mergeBehaviour", &issues))

	if v, ok := raw["profiles"]; ok {
		items, isList := v.([]any)
		if !isList {
			issues = append(issues, fmt.Sprintf("profiles: expected an array, got %s", typeName(v)))
		} else {
			cfg.Profiles = make([]ProfileSpec, 0, len(items))
			for i, item := range items {
				if spec, ok := profileFromAny(item, fmt.Sprintf("profiles[%d]", i), &issues); ok {
					cfg.Profiles = append(cfg.Profiles, spec)
				}
			}
		}
	}

	if len(issues) > 0 {
		return nil, invalid(issues)
	}

	return cfg, nil
}

func profileFromAny(item any, path string, issues *[]string) (ProfileSpec, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s: expected an object, got %s", path, typeName(item)))
		return ProfileSpec{}, false
	}

	for key := range m {
		switch key {
		case "name", "workspaces", "envDir", "envFilePatterns", "mergeBehaviour":
		default:
			log.Debug().Str("key", path+"."+key).Msg("ignoring unknown profile key")
		}
	}

	before := len(*issues)

	spec := ProfileSpec{
		Name:            stringValue(m, "name", path+".name", issues),
		Workspaces:      stringList(m, "workspaces", path+".workspaces", issues),
		EnvDir:          stringValue(m, "envDir", path+".envDir", issues),
		EnvFilePatterns: stringList(m, "envFilePatterns", path+".envFilePatterns", issues),
		MergeBehaviour:  MergeBehaviour(stringValue(m, "mergeBehaviour", path+".mergeBehaviour", issues)),
	}

	if _, present := m["workspaces"]; !present {
		*issues = append(*issues, fmt.Sprintf("%s.workspaces: required", path))
	}

	return spec, len(*issues) == before
}

// Validate checks the values of an already well-shaped Config.
func Validate(cfg *Config) error {
	var issues []string

	if cfg.MergeBehaviour != "" && !cfg.MergeBehaviour.Valid() {
		issues = append(issues, badBehaviour("mergeBehaviour", cfg.MergeBehaviour))
	}
	issues = append(issues, emptyEntries("workspaces", cfg.Workspaces)...)
	issues = append(issues, emptyEntries("syncEnvsTo", cfg.SyncEnvsTo)...)
	issues = append(issues, emptyEntries("envFilePatterns", cfg.EnvFilePatterns)...)
	issues = append(issues, badPatterns("workspaces", cfg.Workspaces)...)
	issues = append(issues, badPatterns("envFilePatterns", cfg.EnvFilePatterns)...)

	for i, p := range cfg.Profiles {
		path := fmt.Sprintf("profiles[%d]", i)
		if p.Workspaces == nil {
			issues = append(issues, path+".workspaces: required")
		}
		if p.MergeBehaviour != "" && !p.MergeBehaviour.Valid() {
			issues = append(issues, badBehaviour(path+".mergeBehaviour", p.MergeBehaviour))
		}
		issues = append(issues, emptyEntries(path+".workspaces", p.Workspaces)...)
		issues = append(issues, emptyEntries(path+".envFilePatterns", p.EnvFilePatterns)...)
		issues = append(issues, badPatterns(path+".envFilePatterns", p.EnvFilePatterns)...)
	}

	if len(issues) > 0 {
		return invalid(issues)
	}

	return nil
}

func invalid(issues []string) error {
	sort.Strings(issues)
	return apperr.Newf(apperr.CodeInvalidConfig, "invalid config: %s", strings.Join(issues, "; "))
}

func badBehaviour(path string, m MergeBehaviour) string {
	return fmt.Sprintf("%s: %q is not one of %q, %q, %q", path, string(m), MergeAppend, MergePrepend, MergeOverwrite)
}

func emptyEntries(path string, items []string) []string {
	var issues []string
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			issues = append(issues, fmt.Sprintf("%s[%d]: must not be empty", path, i))
		}
	}
	return issues
}

// badPatterns reports glob patterns with invalid syntax. A leading "!" marks
// an exclusion and is not part of the pattern.
func badPatterns(path string, patterns []string) []string {
	var issues []string
	for i, pattern := range patterns {
		if !fsys.ValidPattern(strings.TrimPrefix(pattern, "!")) {
			issues = append(issues, fmt.Sprintf("%s[%d]: invalid glob pattern %q", path, i, pattern))
		}
	}
	return issues
}

// stringValue returns m[key] as a string. Absent keys yield "".
func stringValue(m map[string]any, key, path string, issues *[]string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s: expected a string, got %s", path, typeName(v)))
		return ""
	}

	return s
}

// stringList returns m[key] as a string slice. Absent keys yield nil; a
// present empty array yields an empty, non-nil slice.
func stringList(m map[string]any, key, path string, issues *[]string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s: expected an array of strings, got %s", path, typeName(v)))
		return nil
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			*issues = append(*issues, fmt.Sprintf("%s[%d]: expected a string, got %s", path, i, typeName(item)))
			continue
		}
		out = append(out, s)
	}

	return out
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case float64, float32, int, int64, int32, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
