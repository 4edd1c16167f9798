package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/workspace"
)

var (
	flagInitFormat string
	flagInitWrite  bool
	flagInitForce  bool
)

func init() {
	initCmd.Flags().StringVar(&flagInitFormat, "format", "", "output format: json, toml or yaml (default: from --config extension)")
	initCmd.Flags().BoolVar(&flagInitWrite, "write", false, "write the config file to disk (default: dry-run)")
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a starter config from the discovered workspaces",
	Long: `Discovers the workspaces of the project and generates a config that
syncs the default env file patterns from the project root into all of them.
By default runs in dry-run mode printing the generated file.
Use --write to write it to disk.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	format := flagInitFormat
	if format == "" {
		format = config.FormatForPath(p.ConfigPath())
	}

	cfg, defs, err := p.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovering workspaces: %w", err)
	}

	content, err := config.Encode(StarterConfig(cfg, defs), format)
	if err != nil {
		return err
	}

	outPath := outputPath(p.ConfigPath(), format)
	out := cmd.OutOrStdout()

	if !flagInitWrite {
		fmt.Fprintln(out, "# Dry run, use --write to create the file")
		fmt.Fprintf(out, "# %s\n", outPath)
		fmt.Fprint(out, content)
		return nil
	}

	exists, err := p.Files().Exists(outPath)
	if err != nil {
		return err
	}
	if exists && !flagInitForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", outPath)
	}

	if err := p.Files().WriteFile(outPath, []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	log.Debug().Str("path", outPath).Int("workspaces", len(defs)).Msg("wrote starter config")
	fmt.Fprintf(out, "wrote %s\n", outPath)

	return nil
}

// StarterConfig returns a config targeting every discovered workspace with
// the default source directory, patterns and merge behaviour. A workspaces
// override in the existing config is kept so the result discovers the same
// workspaces.
func StarterConfig(existing *config.Config, defs []workspace.Definition) *config.Config {
	var patterns []string
	if existing != nil && existing.Workspaces != nil {
		patterns = append([]string(nil), existing.Workspaces...)
	}

	return &config.Config{
		Workspaces:      patterns,
		EnvDir:          config.DefaultEnvDir,
		SyncEnvsTo:      workspace.Names(defs),
		EnvFilePatterns: append([]string(nil), config.DefaultEnvFilePatterns...),
		MergeBehaviour:  config.DefaultMergeBehaviour,
	}
}

// outputPath swaps the extension of configPath to match format.
func outputPath(configPath, format string) string {
	if config.FormatForPath(configPath) == format && path.Ext(configPath) != "" {
		return configPath
	}
	return strings.TrimSuffix(configPath, path.Ext(configPath)) + "." + format
}
