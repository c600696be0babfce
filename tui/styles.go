package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary   = lipgloss.Color("#7D56F4") // Purple
	colorSecondary = lipgloss.Color("#F4A956") // Orange
	colorText      = lipgloss.Color("#FAFAFA") // White/Light Gray
	colorSubtext   = lipgloss.Color("#777777") // Gray
	colorSuccess   = lipgloss.Color("#43BF6D") // Green
	colorError     = lipgloss.Color("#FF5F5F") // Red

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorSubtext).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			Bold(true)

	styleAddr = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleSent = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleReceived = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorSubtext)

	styleWaiting = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Italic(true)
)
