package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	panel  key.Binding
	mark   key.Binding
	grab   key.Binding
	move   key.Binding
	copy   key.Binding
	cancel key.Binding
	pick   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		panel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		mark:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		grab:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab")),
		move:   key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "drop (move)")),
		copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "drop (copy)")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		pick:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open playlist")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.grab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.panel},
		{k.mark, k.grab, k.move, k.copy},
		{k.pick, k.cancel, k.quit},
	}
}
