// Package feed owns paginated alert retrieval for the live feed view.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/logger"
)

// State is the feed's per-request lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

// String returns the display name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Repository is the slice of the API client the feed needs.
type Repository interface {
	ListAlerts(ctx context.Context, page, size int, sortBy string) (api.Page[api.Alert], error)
	ResolveAlert(ctx context.Context, id int64) (api.Alert, error)
}

// Controller holds the feed's current page and drives page fetches. A
// transient failure keeps the previous page's data intact so the view is
// never blanked by one bad poll.
type Controller struct {
	repo   Repository
	size   int
	sortBy string

	mu            sync.Mutex
	state         State
	alerts        []api.Alert
	totalElements int64
	totalPages    int
	page          int
	lastErr       error
	generation    uint64
}

// New creates a feed controller fetching size rows per page.
func New(repo Repository, size int) *Controller {
	if size <= 0 {
		size = 10
	}
	return &Controller{repo: repo, size: size, sortBy: "timestamp"}
}

// FetchPage loads the requested page. The page index stored afterwards is
// the one the server echoed, not the one requested: the server's index is
// canonical and guards against stale concurrent requests.
func (c *Controller) FetchPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.state = StateLoading
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	resp, err := c.repo.ListAlerts(ctx, page, c.size, c.sortBy)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// A newer fetch superseded this one; drop the result.
		return nil
	}
	if err != nil {
		c.state = StateError
		c.lastErr = err
		logger.Warn("feed fetch failed", "page", page, "error", err)
		return err
	}
	c.state = StateLoaded
	c.lastErr = nil
	c.alerts = resp.Content
	c.totalElements = resp.TotalElements
	c.totalPages = resp.TotalPages
	c.page = resp.Number
	return nil
}

// Refresh re-fetches the currently displayed page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.FetchPage(ctx, c.Page())
}

// Resolve resolves the given alert, then re-fetches the current page so
// the row reflects server truth rather than a locally guessed value.
func (c *Controller) Resolve(ctx context.Context, id int64) (api.Alert, error) {
	resolved, err := c.repo.ResolveAlert(ctx, id)
	if err != nil {
		return api.Alert{}, fmt.Errorf("resolve alert %d: %w", id, err)
	}
	if err := c.Refresh(ctx); err != nil {
		// The resolve itself succeeded; the stale row heals on the next poll.
		logger.Warn("post-resolve refresh failed", "alert", id, "error", err)
	}
	return resolved, nil
}

// NextPage fetches the following page, clamped to the last known page.
func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	page := c.page
	if c.totalPages > 0 && page >= c.totalPages-1 {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.FetchPage(ctx, page+1)
}

// PrevPage fetches the preceding page, stopping at zero.
func (c *Controller) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	page := c.page
	c.mu.Unlock()
	if page == 0 {
		return nil
	}
	return c.FetchPage(ctx, page-1)
}

// Teardown invalidates all outstanding fetches so late responses cannot
// mutate state for a dismissed view.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}

// State returns the current request state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Alerts returns the current page's rows.
func (c *Controller) Alerts() []api.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// Page returns the zero-based current page index as confirmed by the server.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the last known page count.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// TotalElements returns the last known alert total.
func (c *Controller) TotalElements() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalElements
}

// PageSize returns the configured page size.
func (c *Controller) PageSize() int { return c.size }

// Err returns the most recent fetch error, nil once a fetch succeeds.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
