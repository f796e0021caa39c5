package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	primaryColor = lipgloss.Color("#1DB954") // Spotify green
	accentColor  = lipgloss.Color("#1ED760")
	mutedColor   = lipgloss.Color("#B3B3B3")
	errorColor   = lipgloss.Color("#FF5F56")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true)

	searchActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD700"))

	labelStyle = lipgloss.NewStyle().Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(mutedColor)

	statusStyle = lipgloss.NewStyle().Foreground(errorColor)
)
