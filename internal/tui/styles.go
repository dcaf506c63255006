// Package tui is the terminal front end of the admin console. The root App
// model owns page routing; every page is a sub-model that fetches its data
// through tea commands against the API client.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary = lipgloss.Color("#2563EB") // blue
	colorSuccess = lipgloss.Color("#22C55E") // green
	colorWarning = lipgloss.Color("#EAB308") // yellow
	colorError   = lipgloss.Color("#EF4444") // red
	colorMuted   = lipgloss.Color("#6B7280") // gray
	colorText    = lipgloss.Color("#E5E7EB") // light text
	colorSubtext = lipgloss.Color("#9CA3AF") // dimmer text
	colorBorder  = lipgloss.Color("#374151") // border
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			PaddingLeft(1).
			PaddingRight(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Bold(true)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(colorText)
)
