package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/workspace-env/internal/pipeline"
	"go.dot.industries/workspace-env/internal/syncer"
	"go.dot.industries/workspace-env/internal/ui"
	"go.dot.industries/workspace-env/internal/watch"
)

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := watch.SignalContext(cmd.Context())
	defer stop()

	p, err := newPipeline(pipeline.WithDryRun(flagDryRun))
	if err != nil {
		return err
	}

	if flagWatch {
		return runWatch(ctx, cmd.OutOrStdout(), p)
	}

	_, report, err := p.Run(ctx)
	if report != nil {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderReport(report))
	}
	return err
}

// runWatch syncs once and then again on every change until interrupted.
func runWatch(ctx context.Context, out io.Writer, p *pipeline.Pipeline) error {
	w := watch.New(p.Files(), func(ctx context.Context) (watch.Cycle, error) {
		plan, report, err := p.Run(ctx)

		c := watch.Cycle{Watch: p.WatchPaths(plan)}
		if report != nil {
			fmt.Fprint(out, ui.RenderReport(report))
			c.Written = writtenPaths(report)
		}

		return c, err
	})

	log.Info().Str("config", p.ConfigPath()).Msg("watching for changes, press Ctrl+C to stop")

	return w.Run(ctx)
}

// writtenPaths lists the destinations a run actually modified.
func writtenPaths(report *syncer.Report) []string {
	if report.DryRun {
		return nil
	}

	var paths []string
	for _, res := range report.Results {
		if res.Err == nil && res.Outcome != syncer.OutcomeSkipped {
			paths = append(paths, res.Destination)
		}
	}
	return paths
}
