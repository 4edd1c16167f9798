package config

// DefaultFileName is the config file read when no path is given.
const DefaultFileName = "workspace-env.json"

// DefaultEnvDir is the source directory used when envDir is not set.
const DefaultEnvDir = "./"

// DefaultEnvFilePatterns match the conventional dotenv naming variants.
var DefaultEnvFilePatterns = []string{
	".env",
	"*.env",
	".env.*",
	"*.*.env",
	"*.env.*",
	".env.*.*",
}

// MergeBehaviour decides how a source env file combines with an existing
// destination file.
type MergeBehaviour string

const (
	MergeAppend    MergeBehaviour = "append"
	MergePrepend   MergeBehaviour = "prepend"
	MergeOverwrite MergeBehaviour = "overwrite"
)

// DefaultMergeBehaviour applies when neither the config nor a profile sets one.
const DefaultMergeBehaviour = MergeAppend

// Valid reports whether m is one of the known behaviours.
func (m MergeBehaviour) Valid() bool {
	switch m {
	case MergeAppend, MergePrepend, MergeOverwrite:
		return true
	}
	return false
}

// Config is the validated content of a workspace-env config file. A nil
// slice or empty string means the field was absent; path and workspace
// defaults are resolved later, once discovery has run.
type Config struct {
	Workspaces      []string       `json:"workspaces,omitempty" toml:"workspaces,omitempty" yaml:"workspaces,omitempty"`
	EnvDir          string         `json:"envDir,omitempty" toml:"envDir,omitempty" yaml:"envDir,omitempty"`
	SyncEnvsTo      []string       `json:"syncEnvsTo,omitempty" toml:"syncEnvsTo,omitempty" yaml:"syncEnvsTo,omitempty"`
	EnvFilePatterns []string       `json:"envFilePatterns,omitempty" toml:"envFilePatterns,omitempty" yaml:"envFilePatterns,omitempty"`
	MergeBehaviour  MergeBehaviour `json:"mergeBehaviour,omitempty" toml:"mergeBehaviour,omitempty" yaml:"mergeBehaviour,omitempty"`
	Profiles        []ProfileSpec  `json:"profiles,omitempty" toml:"profiles,omitempty" yaml:"profiles,omitempty"`
}

// ProfileSpec is one entry of the profiles list. Unset fields inherit from
// the baseline profile.
type ProfileSpec struct {
	Name            string         `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Workspaces      []string       `json:"workspaces" toml:"workspaces" yaml:"workspaces"`
	EnvDir          string         `json:"envDir,omitempty" toml:"envDir,omitempty" yaml:"envDir,omitempty"`
	EnvFilePatterns []string       `json:"envFilePatterns,omitempty" toml:"envFilePatterns,omitempty" yaml:"envFilePatterns,omitempty"`
	MergeBehaviour  MergeBehaviour `json:"mergeBehaviour,omitempty" toml:"mergeBehaviour,omitempty" yaml:"mergeBehaviour,omitempty"`
}
