package components

import (
	"fmt"
	"strings"

	"github.com/vigilops/vigil/internal/ui/styles"
)

// HelpText renders the keyboard shortcut overlay.
type HelpText struct {
	width  int
	height int
}

// NewHelp creates a help component.
func NewHelp() *HelpText {
	return &HelpText{}
}

// SetSize sets the size of the help component.
func (h *HelpText) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help screen.
func (h *HelpText) View() string {
	var b strings.Builder

	b.WriteString(styles.ViewTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(styles.HeaderStyle.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(h.formatShortcut("q, Ctrl+C", "Quit"))
	b.WriteString(h.formatShortcut("?", "Toggle this help"))
	b.WriteString(h.formatShortcut("Esc", "Close drawer / dialog"))
	b.WriteString(h.formatShortcut("Tab / Shift+Tab", "Cycle views"))
	b.WriteString(h.formatShortcut("1", "Alert feed"))
	b.WriteString(h.formatShortcut("2", "Rule configuration"))
	b.WriteString(h.formatShortcut("3", "Ingest alert"))
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render("Alert Feed"))
	b.WriteString("\n")
	b.WriteString(h.formatShortcut("↑/↓, j/k", "Select row"))
	b.WriteString(h.formatShortcut("←/→", "Previous / next page"))
	b.WriteString(h.formatShortcut("Enter", "Open alert drill-down"))
	b.WriteString(h.formatShortcut("r", "Force refresh"))
	b.WriteString(h.formatShortcut("f", "Cycle auto-closed window"))
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render("Alert Drill-Down"))
	b.WriteString("\n")
	b.WriteString(h.formatShortcut("R", "Resolve alert"))
	b.WriteString(h.formatShortcut("y", "Copy metadata to clipboard"))
	b.WriteString(h.formatShortcut("↑/↓", "Scroll"))
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render("Rules / Ingest"))
	b.WriteString("\n")
	b.WriteString(h.formatShortcut("r", "Reload rules"))
	b.WriteString(h.formatShortcut("↑/↓", "Choose source type"))
	b.WriteString(h.formatShortcut("Ctrl+S", "Submit new alert"))

	return b.String()
}

func (h *HelpText) formatShortcut(keys, description string) string {
	return fmt.Sprintf("  %-18s %s\n",
		styles.HeaderStyle.Render(keys),
		styles.FooterHintStyle.Render(description))
}
