// Package tui is the interactive console front end: a bubbletea program
// that shows the launch report and runs the frame loop until the exit
// buttons are pressed.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme keeps the console colors in one place.
type Theme struct {
	StatusOK     lipgloss.Style
	StatusFailed lipgloss.Style

	Border lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Dim    lipgloss.Style
	Words  lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Words: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	}
}
