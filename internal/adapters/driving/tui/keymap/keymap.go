// Package keymap defines keybindings for the TUI.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the views react to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Submit sends the chat message or lookup form.
	Submit key.Binding

	Up   key.Binding
	Down key.Binding

	// NextField cycles focus between company and role.
	NextField key.Binding

	// NewQuery reopens the lookup form from a result list.
	NewQuery key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:      bind("q", "quit", "q", "ctrl+c"),
		Help:      bind("?", "help", "?"),
		Back:      bind("esc", "back", "esc"),
		Submit:    bind("enter", "send", "enter"),
		Up:        bind("↑/k", "up", "up", "k"),
		Down:      bind("↓/j", "down", "down", "j"),
		NextField: bind("tab", "next field", "tab"),
		NewQuery:  bind("n", "new query", "n"),
	}
}

// ShortHelp is shown while typing a chat message.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back}
}

// FormHelp is shown on the company and role form.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Back}
}

// ResultsHelp is shown while browsing a roadmap or experience list.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewQuery, k.Up, k.Down, k.Back}
}

// MenuHelp is shown on the main menu.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Submit, k.Quit}
}

// FullHelp groups every binding for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextField},
		{k.Submit, k.NewQuery, k.Back},
		{k.Help, k.Quit},
	}
}
