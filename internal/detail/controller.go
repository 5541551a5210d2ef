// Package detail drives the single-alert drill-down: concurrent load of an
// alert plus its transition history, the resolve action, and the
// invalidation fan-out that keeps the independently polled views
// consistent after a resolve.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/cache"
	"github.com/vigilops/vigil/internal/logger"
)

// State is the drill-down lifecycle.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateNotFound
)

// String returns the display name for the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateNotFound:
		return "notFound"
	default:
		return "unknown"
	}
}

// ErrNotResolvable is returned when resolve is attempted on an alert whose
// status is terminal, or before a load completes. No request is issued.
var ErrNotResolvable = errors.New("alert is not in a resolvable state")

// Repository is the slice of the API client the drill-down needs.
type Repository interface {
	GetAlert(ctx context.Context, id int64) (api.Alert, error)
	GetAlertHistory(ctx context.Context, id int64) ([]api.AlertHistory, error)
	ResolveAlert(ctx context.Context, id int64) (api.Alert, error)
}

// Controller loads one alert and its history, and owns the resolve write
// path. A successful resolve publishes invalidation signals for exactly
// the closed set of polled caches; that fan-out is the whole consistency
// mechanism, so it happens on every successful resolve and on no other path.
type Controller struct {
	repo Repository
	bus  *cache.Bus

	mu         sync.Mutex
	state      State
	alert      *api.Alert
	history    []api.AlertHistory
	resolving  bool
	generation uint64
}

// New creates a detail controller publishing invalidations on bus.
func New(repo Repository, bus *cache.Bus) *Controller {
	return &Controller{repo: repo, bus: bus, state: StateLoading}
}

// Load fetches the alert and its full history concurrently. On NotFound
// the state becomes StateNotFound; any other failure on either fetch is
// returned so the caller closes the view rather than rendering a partial
// result.
func (c *Controller) Load(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.state = StateLoading
	c.alert = nil
	c.history = nil
	c.resolving = false
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	var (
		alert   api.Alert
		history []api.AlertHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		alert, err = c.repo.GetAlert(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = c.repo.GetAlertHistory(gctx, id)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// The view moved on to another alert or was torn down.
		return nil
	}
	if err != nil {
		if api.IsNotFound(err) {
			c.state = StateNotFound
			return nil
		}
		return fmt.Errorf("load alert %d: %w", id, err)
	}
	c.state = StateLoaded
	c.alert = &alert
	c.history = history
	return nil
}

// CanResolve reports whether the resolve action is currently permitted:
// the alert is loaded, no resolve is in flight, and the status is not
// terminal.
func (c *Controller) CanResolve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canResolveLocked()
}

func (c *Controller) canResolveLocked() bool {
	return c.state == StateLoaded && !c.resolving && c.alert != nil && !c.alert.Status.Terminal()
}

// Resolve transitions the loaded alert to RESOLVED. The guard runs before
// any network call: resolving a terminal alert is rejected locally. On
// success the resolve response supplies the updated alert (no redundant
// re-fetch), the history is re-fetched for the new transition record, and
// the three invalidation signals are published exactly once. On failure
// the alert is left unchanged.
func (c *Controller) Resolve(ctx context.Context) error {
	c.mu.Lock()
	if !c.canResolveLocked() {
		c.mu.Unlock()
		return ErrNotResolvable
	}
	c.resolving = true
	id := c.alert.ID
	gen := c.generation
	c.mu.Unlock()

	resolved, err := c.repo.ResolveAlert(ctx, id)
	if err != nil {
		c.mu.Lock()
		if gen == c.generation {
			c.resolving = false
		}
		c.mu.Unlock()
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}

	history, histErr := c.repo.GetAlertHistory(ctx, id)

	c.mu.Lock()
	if gen == c.generation {
		c.resolving = false
		c.alert = &resolved
		if histErr == nil {
			c.history = history
		} else {
			// Keep the pre-resolve history; the status itself is already
			// authoritative from the resolve response.
			logger.Warn("history refresh after resolve failed", "alert", id, "error", histErr)
		}
	}
	c.mu.Unlock()

	// The resolve committed server-side, so the stale views must be
	// signalled even if this drill-down was closed in the meantime.
	c.bus.Invalidate(cache.Alerts, cache.TopOffenders, cache.SeverityCounts)
	logger.Info("alert resolved", "alert", id)
	return nil
}

// Close tears the drill-down down. Responses from requests issued before
// the close are dropped rather than applied.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateLoading
	c.alert = nil
	c.history = nil
	c.resolving = false
}

// State returns the drill-down lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Alert returns the loaded alert, or nil.
func (c *Controller) Alert() *api.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alert == nil {
		return nil
	}
	a := *c.alert
	return &a
}

// History returns the loaded transitions in server order.
func (c *Controller) History() []api.AlertHistory {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.AlertHistory, len(c.history))
	copy(out, c.history)
	return out
}

// Resolving reports whether a resolve request is outstanding.
func (c *Controller) Resolving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolving
}
