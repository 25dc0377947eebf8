package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the watch dashboard
var (
	PrimaryColor = lipgloss.Color("#36A3D9") // Blue - headers
	SuccessColor = lipgloss.Color("#43BF6D") // Green - live values
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

var (
	// titleStyle is for the dashboard header line
	titleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	// kindStyle is for packet kind names
	kindStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true).
			Width(16)

	// counterStyle is for sequence counters and frame counts
	counterStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// payloadStyle is for decoded payload renderings
	payloadStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// errorStyle is for stream failures
	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// helpStyle is for the key hint footer
	helpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingTop(1)
)
