package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title       lipgloss.Style
	Muted       lipgloss.Style
	Match       lipgloss.Style
	Selected    lipgloss.Style
	Card        lipgloss.Style
	Eligible    lipgloss.Style
	NotEligible lipgloss.Style
	Alert       lipgloss.Style
	Heading     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#818CF8")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		Match:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366F1")),
		Selected:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6366F1")).Padding(0, 1),
		Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151")).Padding(0, 1),
		Eligible:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")),
		NotEligible: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		Alert:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F87171")),
		Heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A5B4FC")),
	}
}
