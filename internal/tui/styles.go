package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
	warn     lipgloss.Style
	muted    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:    plain.Bold(true),
			header:   plain.Bold(true),
			selected: plain,
			good:     plain,
			bad:      plain,
			warn:     plain,
			muted:    plain,
			help:     plain,
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316")).MarginBottom(1),
		header:   lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8")).Bold(true),
		good:     lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginTop(1),
	}
}
