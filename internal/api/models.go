// Package api provides the typed HTTP client for the fleet alerting service.
package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity is the engine-assigned urgency tier of an alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Severities lists all severity tiers in display order.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityWarning, SeverityInfo}
}

// Status is the lifecycle stage of an alert.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusEscalated  Status = "ESCALATED"
	StatusAutoClosed Status = "AUTO_CLOSED"
	StatusResolved   Status = "RESOLVED"
)

// Terminal reports whether the status permits no further transitions.
// RESOLVED and AUTO_CLOSED are final states.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusAutoClosed
}

// Timestamp wraps time.Time to accept the server's ISO-8601 local
// date-time format, which omits the zone offset RFC 3339 requires.
type Timestamp struct {
	time.Time
}

const localDateTime = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON parses either RFC 3339 or a bare local date-time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(localDateTime, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON emits RFC 3339, which the server accepts on ingest.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Alert is one ingested event. Owned by the remote service; the client
// holds transient copies that are discarded and re-fetched, never mutated
// locally except for the optimistic status update after a resolve.
type Alert struct {
	ID         int64     `json:"alertId"`
	SourceType string    `json:"sourceType"`
	Severity   Severity  `json:"severity"`
	Status     Status    `json:"status"`
	Timestamp  Timestamp `json:"timestamp"`
	Metadata   string    `json:"metadata"`
}

// AlertHistory records one status transition. A nil PreviousStatus marks
// the initial ingestion event.
type AlertHistory struct {
	ID             int64     `json:"historyId"`
	AlertID        int64     `json:"alertId"`
	PreviousStatus *Status   `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	TransitionTime Timestamp `json:"transitionTime"`
	Reason         string    `json:"reason"`
}

// CreateAlertRequest is the ingest payload. Metadata must be valid JSON;
// the server assigns severity and the initial status.
type CreateAlertRequest struct {
	SourceType string `json:"sourceType"`
	Metadata   string `json:"metadata"`
}

// Page is the server's pagination envelope. Number is the zero-based page
// index echoed by the server, which is canonical over whatever index the
// client requested.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// RuleConfig describes the escalation/auto-close rule for one source type.
// All fields are optional; absence means "not configured", not zero.
type RuleConfig struct {
	EscalateIfCount *int   `json:"escalate_if_count,omitempty"`
	WindowMins      *int   `json:"window_mins,omitempty"`
	AutoCloseIf     string `json:"auto_close_if,omitempty"`
}

// TopOffender is one leaderboard entry, sorted descending by count
// server-side and bounded to the top five.
type TopOffender struct {
	DriverID string `json:"driverId"`
	Count    int64  `json:"count"`
}

// TrendPoint is one day of ingest volume. The server serializes trends as
// bare [dateLabel, count] pairs.
type TrendPoint struct {
	Date  string
	Count int64
}

// UnmarshalJSON decodes the positional pair form.
func (p *TrendPoint) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("trend point must be a [date, count] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Date); err != nil {
		return fmt.Errorf("trend date: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Count); err != nil {
		return fmt.Errorf("trend count: %w", err)
	}
	return nil
}

// AutoClosedFilter selects the lookback window for recent auto-closed alerts.
type AutoClosedFilter string

const (
	AutoClosedLast24h AutoClosedFilter = "24h"
	AutoClosedLast7d  AutoClosedFilter = "7d"
)

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// DescribeSource renders a source type label for display,
// e.g. "feedback_negative" becomes "feedback negative".
func DescribeSource(sourceType string) string {
	return strings.ReplaceAll(sourceType, "_", " ")
}
