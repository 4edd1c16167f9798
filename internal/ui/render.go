// Package ui renders workspace-env plans and reports for the terminal.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go.dot.industries/workspace-env/internal/profile"
	"go.dot.industries/workspace-env/internal/syncer"
	"go.dot.industries/workspace-env/internal/workspace"
)

// outcomeColors maps each outcome to its label color.
var outcomeColors = map[syncer.Outcome]lipgloss.Color{
	syncer.OutcomeCreated:     colorSuccess,
	syncer.OutcomeAppended:    colorInfo,
	syncer.OutcomePrepended:   colorInfo,
	syncer.OutcomeOverwritten: colorWarning,
	syncer.OutcomeSkipped:     colorMuted,
}

// outcomeOrder fixes the order of the summary line.
var outcomeOrder = []syncer.Outcome{
	syncer.OutcomeCreated,
	syncer.OutcomeAppended,
	syncer.OutcomePrepended,
	syncer.OutcomeOverwritten,
	syncer.OutcomeSkipped,
}

// RenderWorkspaces lists discovered workspaces as "name  path".
func RenderWorkspaces(defs []workspace.Definition) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Workspaces (%d)", len(defs))))
	b.WriteString("\n")

	width := 0
	for _, def := range defs {
		width = max(width, len(def.Name))
	}

	for _, def := range defs {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, def.Name, styleDim.Render(def.Path))
	}

	return b.String()
}

// RenderProfiles describes each resolved profile.
func RenderProfiles(profiles []profile.Profile) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Profiles (%d)", len(profiles))))
	b.WriteString("\n")

	if len(profiles) == 0 {
		b.WriteString(styleMuted.Render("  none"))
		b.WriteString("\n")
	}

	for _, p := range profiles {
		fmt.Fprintf(&b, "  %s\n", p.Name)
		fmt.Fprintf(&b, "    envDir:          %s\n", p.EnvDir)
		fmt.Fprintf(&b, "    envFilePatterns: %s\n", strings.Join(p.EnvFilePatterns, ", "))
		fmt.Fprintf(&b, "    mergeBehaviour:  %s\n", p.MergeBehaviour)
		fmt.Fprintf(&b, "    workspaces:      %s\n", strings.Join(workspace.Names(p.Workspaces), ", "))
	}

	return b.String()
}

// RenderWrites lists planned writes grouped by profile, in plan order.
func RenderWrites(writes []syncer.Write) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Planned writes (%d)", len(writes))))
	b.WriteString("\n")

	current := ""
	for i, w := range writes {
		if i == 0 || w.Profile != current {
			current = w.Profile
			fmt.Fprintf(&b, "  %s\n", styleMuted.Render("["+current+"]"))
		}
		fmt.Fprintf(&b, "    %s -> %s %s\n", w.Source, w.Destination, styleDim.Render("("+string(w.Mode)+")"))
	}

	return b.String()
}

// RenderReport prints one line per result followed by a summary.
func RenderReport(report *syncer.Report) string {
	var b strings.Builder

	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(&b, "%s %s -> %s: %s\n",
				styleOutcome.Inherit(styleErrorText).Render("failed"),
				res.Source, res.Destination, res.Err)
			continue
		}

		label := styleOutcome.Foreground(outcomeColors[res.Outcome]).Render(string(res.Outcome))
		fmt.Fprintf(&b, "%s %s -> %s\n", label, res.Source, res.Destination)
	}

	b.WriteString(Summary(report))
	b.WriteString("\n")

	return b.String()
}

// Summary returns a one-line tally of the report, e.g.
// "3 files synced: 2 created, 1 appended".
func Summary(report *syncer.Report) string {
	counts := report.Counts()

	var parts []string
	for _, o := range outcomeOrder {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, o))
		}
	}

	var extra []string
	for o, n := range counts {
		if !contains(outcomeOrder, o) {
			extra = append(extra, fmt.Sprintf("%d %s", n, o))
		}
	}
	sort.Strings(extra)
	parts = append(parts, extra...)

	verb := "synced"
	if report.DryRun {
		verb = "would sync"
	}

	synced := len(report.Results) - len(report.Failed())
	line := fmt.Sprintf("%d files %s", synced, verb)
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}

	if failed := len(report.Failed()); failed > 0 {
		line += styleErrorText.Render(fmt.Sprintf(" (%d failed)", failed))
	}

	return styleTitle.Render(line)
}

func contains(items []syncer.Outcome, target syncer.Outcome) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
