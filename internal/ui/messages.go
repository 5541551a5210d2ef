// Package ui provides Bubbletea messages, key bindings, and shared
// utilities for the vigil TUI.
package ui

import (
	"time"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/poll"
)

// Data messages (from fetch commands to the UI)

// FeedPageMsg carries one page of the alert feed.
type FeedPageMsg struct {
	Loop       poll.Loop
	Generation uint64
	Forced     bool
	FetchedAt  time.Time
	Err        error
}

// SeverityCountsMsg carries the severity tally.
type SeverityCountsMsg struct {
	Loop       poll.Loop
	Generation uint64
	Forced     bool
	Counts     map[api.Severity]int64
	FetchedAt  time.Time
	Err        error
}

// TopOffendersMsg carries the driver leaderboard.
type TopOffendersMsg struct {
	Loop       poll.Loop
	Generation uint64
	Forced     bool
	Offenders  []api.TopOffender
	FetchedAt  time.Time
	Err        error
}

// DetailLoadedMsg signals completion of the drill-down's concurrent load.
type DetailLoadedMsg struct {
	ID  int64
	Err error
}

// ResolveResultMsg signals completion of a resolve action.
type ResolveResultMsg struct {
	ID  int64
	Err error
}

// RuleConfigMsg signals completion of a rule set fetch.
type RuleConfigMsg struct {
	Err error
}

// TrendsMsg carries the daily ingest trend points.
type TrendsMsg struct {
	Points []api.TrendPoint
	Err    error
}

// RecentEventsMsg carries the latest status transitions across all alerts.
type RecentEventsMsg struct {
	Events []api.AlertHistory
	Err    error
}

// AutoClosedMsg carries recent auto-closed alerts for one lookback window.
type AutoClosedMsg struct {
	Filter api.AutoClosedFilter
	Alerts []api.Alert
	Err    error
}

// CreateResultMsg signals completion of an alert ingest.
type CreateResultMsg struct {
	Alert api.Alert
	Err   error
}

// LoginResultMsg signals completion of a login attempt.
type LoginResultMsg struct {
	Err error
}

// SessionExpiredMsg is sent when the stored credential is cleared by the
// 401 handler, from any request on any view.
type SessionExpiredMsg struct{}

// Navigation messages

// OpenDetailMsg asks the app to open the drill-down for an alert.
type OpenDetailMsg struct {
	ID int64
}

// CloseDetailMsg asks the app to close the drill-down.
type CloseDetailMsg struct{}

// ShowToastMsg raises a transient notification.
type ShowToastMsg struct {
	Text  string
	IsErr bool
}

// ClearToastMsg hides an expired notification.
type ClearToastMsg struct {
	ID int
}

// StatusTickMsg updates the status bar clock.
type StatusTickMsg struct {
	Timestamp time.Time
}

// PageRequestMsg asks the app to move the feed by delta pages.
type PageRequestMsg struct {
	Delta int
}

// RefreshRequestMsg asks the app to force-refresh the current view.
type RefreshRequestMsg struct{}

// AutoClosedFilterMsg asks the app to re-fetch recent auto-closed alerts
// with a different lookback window.
type AutoClosedFilterMsg struct {
	Filter api.AutoClosedFilter
}

// ResolveRequestMsg asks the app to resolve the drill-down's alert.
type ResolveRequestMsg struct{}

// SubmitCreateMsg asks the app to ingest a new alert.
type SubmitCreateMsg struct {
	SourceType string
	Metadata   string
}

// SubmitLoginMsg asks the app to attempt a login.
type SubmitLoginMsg struct {
	Username string
	Password string
}

// ReloadRulesMsg asks the app to flush and re-fetch the rule set.
type ReloadRulesMsg struct{}
