// Package views contains the operator console's screens.
package views

import tea "github.com/charmbracelet/bubbletea"

// ViewType identifies the available views.
type ViewType int

const (
	ViewFeed ViewType = iota
	ViewRules
	ViewCreate
	ViewLogin
)

// String returns the display name of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewFeed:
		return "Alert Feed"
	case ViewRules:
		return "Rule Configuration"
	case ViewCreate:
		return "Ingest Alert"
	case ViewLogin:
		return "Login"
	default:
		return "Unknown"
	}
}

// ShortName returns a compact name for the header tabs.
func (v ViewType) ShortName() string {
	switch v {
	case ViewFeed:
		return "feed"
	case ViewRules:
		return "rules"
	case ViewCreate:
		return "ingest"
	case ViewLogin:
		return "login"
	default:
		return "unk"
	}
}

// ViewModel is the interface every view implements.
type ViewModel interface {
	// Update handles messages and updates the view state.
	Update(tea.Msg) tea.Cmd

	// View renders the view to a string.
	View() string

	// SetSize sets the dimensions of the view.
	SetSize(width, height int)
}
