package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/fsys"
	"go.dot.industries/workspace-env/internal/pipeline"
)

var (
	flagConfig      string
	flagRoot        string
	flagVerbose     bool
	flagConcurrency int
	flagWatch       bool
	flagDryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "workspace-env",
	Short: "Sync env files into the workspaces of a monorepo",
	Long: `workspace-env copies env files from a source directory into every
workspace of a monorepo. Workspaces are discovered from package.json,
pnpm-workspace.yaml or lerna.json. Profiles in workspace-env.json choose
which files go where and whether they are appended, prepended or
overwritten in existing files.`,
	Args:          cobra.NoArgs,
	RunE:          runSync,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Exit statuses by error kind. Anything without a kind exits with 1.
const (
	exitConfig    = 2
	exitDiscovery = 3
	exitSync      = 4
)

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidConfig, apperr.CodeUnknownWorkspace:
		return exitConfig
	case apperr.CodeNoWorkspacesFound, apperr.CodeMissingWorkspaceManifest:
		return exitDiscovery
	case apperr.CodeSyncIO:
		return exitSync
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultFileName, "config file (json, toml or yaml), relative to --root")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "project root containing the workspace manifests")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "maximum concurrent file operations (default 10)")

	rootCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "re-run whenever the config or env files change")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would be written without writing")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

// newPipeline opens the project root and builds a pipeline from the
// persistent flags.
func newPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	files, err := fsys.NewOS(flagRoot)
	if err != nil {
		return nil, err
	}

	rootDir, err := filepath.Abs(flagRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for root %s: %w", flagRoot, err)
	}

	configPath, err := configPathFor(rootDir, flagConfig)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("root", rootDir).Str("config", configPath).Msg("opened project")

	opts = append(opts, pipeline.WithMaxConcurrency(flagConcurrency))
	return pipeline.New(files, configPath, opts...), nil
}

// configPathFor returns the config path relative to rootDir. Absolute paths
// must point inside the root.
func configPathFor(rootDir, configFlag string) (string, error) {
	if configFlag == "" {
		return config.DefaultFileName, nil
	}

	if !filepath.IsAbs(configFlag) {
		return filepath.ToSlash(filepath.Clean(configFlag)), nil
	}

	rel, err := filepath.Rel(rootDir, configFlag)
	if err != nil {
		return "", fmt.Errorf("resolving config path %s: %w", configFlag, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("config file %s is outside the project root %s", configFlag, rootDir)
	}

	return filepath.ToSlash(rel), nil
}
