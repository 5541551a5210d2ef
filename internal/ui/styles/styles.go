package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vigilops/vigil/internal/api"
)

// Common border styles
var (
	// BorderNormal is the standard border for most UI elements
	BorderNormal = lipgloss.NormalBorder()

	// BorderRounded is used for metric panels
	BorderRounded = lipgloss.RoundedBorder()
)

// Panel styles
var (
	// PanelStyle is the base style for severity counter panels
	PanelStyle = lipgloss.NewStyle().
			Border(BorderRounded).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// PanelLabelStyle is for counter panel labels
	PanelLabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Align(lipgloss.Center)

	// PanelValueStyle is for counter panel values
	PanelValueStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)
)

// Table styles
var (
	// TableBorderStyle wraps the alert feed table
	TableBorderStyle = lipgloss.NewStyle().
				Border(BorderNormal).
				BorderForeground(ColorBorder)

	// TableHeaderStyle is for table column headers
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent)

	// TableSelectedStyle is for the selected row
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorSelectedFg).
				Background(ColorSelectedBg)
)

// Header and status styles
var (
	// HeaderStyle is for the application header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// ViewTitleStyle is for per-view titles
	ViewTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Underline(true)

	// StatusBarStyle wraps the status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// FooterHintStyle is for keyboard hints
	FooterHintStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ErrorStyle is for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// SuccessStyle is for success toasts
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// InfoStyle is for neutral informational text
	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// MutedStyle is for secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// SeverityBadge renders a colored severity label.
func SeverityBadge(s api.Severity) string {
	return lipgloss.NewStyle().Bold(true).Foreground(SeverityColor(s)).Render(string(s))
}

// StatusBadge renders a colored status label.
func StatusBadge(s api.Status) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render(string(s))
}
