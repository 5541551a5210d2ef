// Package components provides reusable UI components for the vigil TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vigilops/vigil/internal/ui/styles"
)

// StatusBar shows connection, session, and latency state at the bottom of
// every view.
type StatusBar struct {
	width int

	serverURL  string
	user       string
	expiresAt  time.Time
	timestamp  time.Time
	latency    time.Duration
	dateFormat string

	authenticated bool
	lastError     string
}

// NewStatusBar creates a status bar component.
func NewStatusBar() *StatusBar {
	return &StatusBar{dateFormat: "15:04:05"}
}

// SetSize sets the width of the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetServer sets the service URL shown on the left.
func (s *StatusBar) SetServer(url string) {
	s.serverURL = url
}

// SetSession sets the authenticated user and token expiry.
func (s *StatusBar) SetSession(authenticated bool, user string, expiresAt time.Time) {
	s.authenticated = authenticated
	s.user = user
	s.expiresAt = expiresAt
}

// SetTimestamp sets the clock display.
func (s *StatusBar) SetTimestamp(t time.Time) {
	s.timestamp = t
}

// SetLatency sets the smoothed request latency display.
func (s *StatusBar) SetLatency(d time.Duration) {
	s.latency = d
}

// SetLastError sets a short error indicator, cleared with "".
func (s *StatusBar) SetLastError(msg string) {
	s.lastError = msg
}

// View renders the status bar.
func (s *StatusBar) View() string {
	left := styles.StatusBarStyle.Render(s.serverURL)
	if s.authenticated {
		who := s.user
		if who == "" {
			who = "authenticated"
		}
		left += styles.StatusBarStyle.Render(" │ " + who)
		if !s.expiresAt.IsZero() {
			left += styles.StatusBarStyle.Render(
				fmt.Sprintf(" (expires %s)", s.expiresAt.Format("15:04")))
		}
	} else {
		left += styles.ErrorStyle.Render(" │ not logged in")
	}

	var right string
	if s.lastError != "" {
		right += styles.ErrorStyle.Render("! "+s.lastError) + "  "
	}
	if s.latency > 0 {
		right += styles.StatusBarStyle.Render(
			fmt.Sprintf("api %s  ", s.latency.Round(time.Millisecond)))
	}
	if !s.timestamp.IsZero() {
		right += styles.StatusBarStyle.Render(s.timestamp.Format(s.dateFormat))
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
