package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/avlev/pgtop/internal/config"
)

// Theme-aware style getters

// TitleStyle returns the style for the program name in the summary.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(config.CurrentTheme.Title))
}

// SummaryStyle returns the style for the host/connection summary lines.
func SummaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Summary))
}

// StatusStyle returns the style for the command/status line.
func StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Status))
}

// ErrorStyle returns the style for failure messages.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Error)).
		Bold(true)
}

// TableStyle returns the style for data cells.
func TableStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.TableText))
}

// HeaderRowStyle returns the bold style of the column header row.
func HeaderRowStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.TableText)).
		Bold(true)
}

// SortHeaderStyle returns the reverse-video style marking the active sort
// column in the header row.
func SortHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.SortColumn)).
		Bold(true).
		Reverse(true)
}
