package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/workspace-env/internal/ui"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config against the discovered workspaces",
	Long: `Loads the config file, discovers workspaces and resolves every profile
without writing anything. Reports invalid config values, unknown workspace
names and workspaces missing a package.json name.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	plan, err := p.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", p.ConfigPath(), err)
	}

	log.Debug().Int("workspaces", len(plan.Workspaces)).Int("profiles", len(plan.Profiles)).Msg("config valid")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.RenderProfiles(plan.Profiles))
	fmt.Fprintf(out, "%s: valid (%d workspaces, %d profiles)\n", p.ConfigPath(), len(plan.Workspaces), len(plan.Profiles))

	return nil
}
