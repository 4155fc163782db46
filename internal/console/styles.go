// Package console renders the interactive screens of an import run and
// reads the operator's menu choices.
package console

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent      = lipgloss.Color("#8BC34A") // Lime green
	Primary     = lipgloss.Color("#2196F3") // Blue
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Muted       = lipgloss.Color("#8a94a6")
)

// Theme holds the styles used by every screen.
type Theme struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Card    lipgloss.Style
}

// DefaultTheme returns the colored theme.
func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Key:     lipgloss.NewStyle().Foreground(Muted).Width(18),
		Value:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(Muted),
		Success: lipgloss.NewStyle().Foreground(Accent),
		Failure: lipgloss.NewStyle().Foreground(Destructive),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1),
	}
}

// PlainTheme returns a theme without colors or borders, for logs, pipes and
// terminals that cannot render them.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title:   plain,
		Heading: plain,
		Key:     plain.Width(18),
		Value:   plain,
		Muted:   plain,
		Success: plain,
		Failure: plain,
		Warning: plain,
		Card:    plain,
	}
}
