package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/VividCortex/ewma"

	"github.com/vigilops/vigil/internal/logger"
	"github.com/vigilops/vigil/internal/session"
)

// DefaultTimeout bounds every request when the config does not override it.
const DefaultTimeout = 10 * time.Second

// Client issues the fixed set of alert/dashboard operations against the
// remote service. Every call attaches the current bearer credential; a 401
// anywhere clears the stored credential, which fans out to the session's
// subscribers (global logout).
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session

	mu      sync.Mutex
	latency ewma.MovingAverage
	samples int
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, sess *session.Session) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: trimSlash(baseURL),
		http:    &http.Client{Timeout: timeout},
		session: sess,
		latency: ewma.NewMovingAverage(),
	}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Transport exposes the underlying http.Client for test instrumentation.
func (c *Client) Transport() *http.Client { return c.http }

// AvgLatency returns the smoothed request latency, or zero before enough
// samples have accumulated.
func (c *Client) AvgLatency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.samples == 0 {
		return 0
	}
	return time.Duration(c.latency.Value())
}

func (c *Client) observeLatency(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latency.Add(float64(d))
	c.samples++
}

// errorBody is the service's failure envelope.
type errorBody struct {
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

// do issues one request and decodes a JSON response into out (when out is
// non-nil). Authentication, error taxonomy mapping, and latency tracking
// all live here so individual operations stay one-liners.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransientError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransientError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()
	c.observeLatency(time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransientError{Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &eb)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// Global side effect: discard the credential so every view drops
		// back to the authentication entry point, not just this call.
		logger.Warn("credential rejected, clearing session", "path", path)
		c.session.Clear()
		return &AuthorizationError{Message: eb.Message}
	case http.StatusNotFound:
		return &NotFoundError{Resource: "resource"}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: eb.Message, Fields: eb.ValidationErrors}
	default:
		msg := eb.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &TransientError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
}

// ListAlerts fetches one page of the alert feed, newest first by default.
func (c *Client) ListAlerts(ctx context.Context, page, size int, sortBy string) (Page[Alert], error) {
	if page < 0 {
		return Page[Alert]{}, &ValidationError{Message: fmt.Sprintf("page must be >= 0, got %d", page)}
	}
	if size <= 0 {
		return Page[Alert]{}, &ValidationError{Message: fmt.Sprintf("size must be > 0, got %d", size)}
	}
	if sortBy == "" {
		sortBy = "timestamp"
	}
	q := url.Values{
		"page":   {strconv.Itoa(page)},
		"size":   {strconv.Itoa(size)},
		"sortBy": {sortBy},
	}
	var out Page[Alert]
	if err := c.do(ctx, http.MethodGet, "/alerts", q, nil, &out); err != nil {
		return Page[Alert]{}, err
	}
	return out, nil
}

// GetAlert fetches a single alert by id.
func (c *Client) GetAlert(ctx context.Context, id int64) (Alert, error) {
	var out Alert
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/alerts/%d", id), nil, nil, &out); err != nil {
		return Alert{}, alertNotFound(err, id)
	}
	return out, nil
}

// CreateAlert ingests a new alert. Metadata is checked for JSON syntax
// before any request is issued; the server stays authoritative for
// severity assignment and deeper validation.
func (c *Client) CreateAlert(ctx context.Context, req CreateAlertRequest) (Alert, error) {
	if !json.Valid([]byte(req.Metadata)) {
		return Alert{}, &ValidationError{
			Fields: map[string]string{"metadata": "metadata must be a valid JSON document"},
		}
	}
	var out Alert
	if err := c.do(ctx, http.MethodPost, "/alerts", nil, req, &out); err != nil {
		return Alert{}, err
	}
	return out, nil
}

// ResolveAlert transitions an alert to RESOLVED. Not idempotent: resolving
// an already-terminal alert is a caller error and the server decides
// whether to reject or no-op. Callers guard with Status.Terminal first.
func (c *Client) ResolveAlert(ctx context.Context, id int64) (Alert, error) {
	var out Alert
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/alerts/%d/resolve", id), nil, nil, &out); err != nil {
		return Alert{}, alertNotFound(err, id)
	}
	return out, nil
}

// GetAlertHistory fetches the alert's transitions ordered by time.
func (c *Client) GetAlertHistory(ctx context.Context, id int64) ([]AlertHistory, error) {
	var out []AlertHistory
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/alerts/%d/history", id), nil, nil, &out); err != nil {
		return nil, alertNotFound(err, id)
	}
	return out, nil
}

// GetSeverityCounts fetches the open-alert tally per severity tier.
func (c *Client) GetSeverityCounts(ctx context.Context) (map[Severity]int64, error) {
	var out map[Severity]int64
	if err := c.do(ctx, http.MethodGet, "/dashboard/severity-counts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTopOffenders fetches the driver leaderboard, already sorted and
// bounded server-side.
func (c *Client) GetTopOffenders(ctx context.Context) ([]TopOffender, error) {
	var out []TopOffender
	if err := c.do(ctx, http.MethodGet, "/dashboard/top-offenders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecentEvents fetches the latest status transitions across all alerts.
func (c *Client) GetRecentEvents(ctx context.Context) ([]AlertHistory, error) {
	var out []AlertHistory
	if err := c.do(ctx, http.MethodGet, "/dashboard/recent-events", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecentAutoClosed fetches alerts the rule engine auto-closed within
// the given lookback window.
func (c *Client) GetRecentAutoClosed(ctx context.Context, filter AutoClosedFilter) ([]Alert, error) {
	if filter == "" {
		filter = AutoClosedLast24h
	}
	q := url.Values{"filter": {string(filter)}}
	var out []Alert
	if err := c.do(ctx, http.MethodGet, "/dashboard/recent-autoclosed", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDailyTrends fetches per-day ingest counts for the trend chart.
func (c *Client) GetDailyTrends(ctx context.Context) ([]TrendPoint, error) {
	var out []TrendPoint
	if err := c.do(ctx, http.MethodGet, "/dashboard/trends/daily", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetActiveRuleConfig fetches the rule set currently loaded by the engine,
// keyed by source type. Read-only; the client never mutates rules.
func (c *Client) GetActiveRuleConfig(ctx context.Context) (map[string]RuleConfig, error) {
	var out map[string]RuleConfig
	if err := c.do(ctx, http.MethodGet, "/admin/config/rules", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a bearer token and stores it in the
// session. The only unauthenticated operation.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return err
	}
	if out.Token == "" {
		return &TransientError{Err: errors.New("login response missing token")}
	}
	if err := c.session.Set(out.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// alertNotFound fills in the alert id on NotFound errors coming out of do.
func alertNotFound(err error, id int64) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		nf.Resource = "alert"
		nf.ID = id
	}
	return err
}
