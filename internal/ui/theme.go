package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the CLI output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // violet-600
	colorMuted   = lipgloss.Color("#6B7280") // gray-500
	colorFgDim   = lipgloss.Color("#9CA3AF") // gray-400
	colorSuccess = lipgloss.Color("#10B981") // emerald-500
	colorWarning = lipgloss.Color("#F59E0B") // amber-500
	colorError   = lipgloss.Color("#EF4444") // red-500
	colorInfo    = lipgloss.Color("#A78BFA") // violet-400
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleDim = lipgloss.NewStyle().
			Foreground(colorFgDim)

	styleErrorText = lipgloss.NewStyle().
			Foreground(colorError)

	styleOutcome = lipgloss.NewStyle().
			Width(12)
)
