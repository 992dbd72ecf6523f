package ui

import "github.com/charmbracelet/lipgloss"

// Colors used by the player.
var (
	colorPrimary = lipgloss.Color("62")  // Purple
	colorMuted   = lipgloss.Color("241") // Gray
	colorPerfect = lipgloss.Color("212") // Pink
	colorSuccess = lipgloss.Color("78")  // Green
	colorFailure = lipgloss.Color("203") // Red
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var promptStyle = lipgloss.NewStyle().
	Bold(true).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 2)

var targetStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPerfect)

var mutedStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var successStyle = lipgloss.NewStyle().
	Foreground(colorSuccess)

var perfectStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPerfect)

var failureStyle = lipgloss.NewStyle().
	Foreground(colorFailure)

var debugStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)
