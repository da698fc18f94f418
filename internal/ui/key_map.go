package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	open      key.Binding
	back      key.Binding
	upload    key.Binding
	history   key.Binding
	save      key.Binding
	view      key.Binding
	close     key.Binding
	closeIcon key.Binding
	escape    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		open:      key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "choose")),
		back:      key.NewBinding(key.WithKeys("h", "backspace"), key.WithHelp("h", "parent dir")),
		upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		history:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "download")),
		view:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		close:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "close")),
		closeIcon: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "×")),
		escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.upload, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.open, k.back},
		{k.upload, k.history},
		{k.save, k.view, k.close, k.closeIcon, k.escape},
		{k.quit},
	}
}
