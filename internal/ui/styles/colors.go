// Package styles provides centralized Lipgloss styling for the vigil UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vigilops/vigil/internal/api"
)

// Color palette for the vigil UI
var (
	// Severity colors
	ColorCritical = lipgloss.Color("9")   // Red
	ColorWarning  = lipgloss.Color("11")  // Yellow
	ColorInfo     = lipgloss.Color("12")  // Blue

	// Status colors
	ColorOpen       = lipgloss.Color("10")  // Green - needs attention but live
	ColorEscalated  = lipgloss.Color("208") // Orange - escalated by the engine
	ColorAutoClosed = lipgloss.Color("8")   // Gray - closed by the engine
	ColorResolved   = lipgloss.Color("6")   // Cyan - resolved by an operator

	// UI element colors
	ColorBorder  = lipgloss.Color("240") // Gray - all borders
	ColorAccent  = lipgloss.Color("6")   // Cyan - titles, highlights
	ColorMuted   = lipgloss.Color("8")   // Dark gray - secondary text
	ColorSuccess = lipgloss.Color("10")  // Green - success messages
	ColorError   = lipgloss.Color("9")   // Red - error messages

	// Selection colors
	ColorSelectedFg = lipgloss.Color("229") // Light yellow text
	ColorSelectedBg = lipgloss.Color("57")  // Purple background
)

// SeverityColor returns the color for a severity tier.
func SeverityColor(s api.Severity) lipgloss.Color {
	switch s {
	case api.SeverityCritical:
		return ColorCritical
	case api.SeverityWarning:
		return ColorWarning
	case api.SeverityInfo:
		return ColorInfo
	default:
		return ColorMuted
	}
}

// StatusColor returns the color for a lifecycle status.
func StatusColor(s api.Status) lipgloss.Color {
	switch s {
	case api.StatusOpen:
		return ColorOpen
	case api.StatusEscalated:
		return ColorEscalated
	case api.StatusAutoClosed:
		return ColorAutoClosed
	case api.StatusResolved:
		return ColorResolved
	default:
		return ColorMuted
	}
}
