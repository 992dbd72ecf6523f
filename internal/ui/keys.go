package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings the player reserves. Every other key goes to the QTEs.
type keyMap struct {
	Quit  key.Binding
	Pause key.Binding
	Debug key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
		Pause: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pause")),
		Debug: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "debug overlay")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Pause, k.Debug}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
