package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the application.
type KeyMap struct {
	// Navigation
	Quit     key.Binding
	Help     key.Binding
	Back     key.Binding
	NextView key.Binding
	PrevView key.Binding

	// View jumping
	JumpToFeed   key.Binding
	JumpToRules  key.Binding
	JumpToCreate key.Binding

	// Feed navigation
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Open     key.Binding

	// Actions
	Refresh      key.Binding
	Resolve      key.Binding
	CopyMetadata key.Binding
	CycleFilter  key.Binding
	Submit       key.Binding
}

// DefaultKeyMap returns the default keyboard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		JumpToFeed: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "alert feed"),
		),
		JumpToRules: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "rules"),
		),
		JumpToCreate: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "ingest"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←", "previous page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open alert"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "resolve"),
		),
		CopyMetadata: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy metadata"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle window"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
	}
}
