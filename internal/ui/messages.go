package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg advances the world clock.
type frameMsg time.Time

func frame(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
