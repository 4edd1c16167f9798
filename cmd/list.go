package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/workspace-env/internal/pipeline"
	"go.dot.industries/workspace-env/internal/syncer"
	"go.dot.industries/workspace-env/internal/ui"
)

var flagListJSON bool

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print the plan as JSON")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces, profiles and the writes a sync would perform",
	Long: `Shows the discovered workspaces, the resolved profiles and every
(source, destination) pair a sync would write, without touching any file.
Useful for debugging configuration.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(pipeline.WithDryRun(true))
	if err != nil {
		return err
	}

	plan, err := p.Load(cmd.Context())
	if err != nil {
		return err
	}

	writes, err := p.Writes(cmd.Context(), plan)
	if err != nil {
		return err
	}

	log.Debug().
		Int("workspaces", len(plan.Workspaces)).
		Int("profiles", len(plan.Profiles)).
		Int("writes", len(writes)).
		Msg("resolved plan")

	out := cmd.OutOrStdout()

	if flagListJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*pipeline.Plan
			Writes []syncer.Write `json:"writes"`
		}{plan, writes})
	}

	fmt.Fprintln(out, ui.RenderWorkspaces(plan.Workspaces))
	fmt.Fprintln(out, ui.RenderProfiles(plan.Profiles))
	fmt.Fprint(out, ui.RenderWrites(writes))

	return nil
}
