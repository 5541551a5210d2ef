// Package rules renders the escalation/auto-close rule set currently
// loaded by the remote rule engine. Read-only: the client only displays
// what the engine reports.
package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vigilops/vigil/internal/api"
)

// State is the viewer lifecycle.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateError
)

const (
	cacheKey = "activeRules"
	cacheTTL = 5 * time.Minute
)

// Repository is the slice of the API client the viewer needs.
type Repository interface {
	GetActiveRuleConfig(ctx context.Context) (map[string]api.RuleConfig, error)
}

// Viewer fetches and caches the active rule configuration. Rules change
// rarely (the engine loads them at startup), so reads go through a short
// TTL cache; a manual reload flushes it.
type Viewer struct {
	repo  Repository
	cache *gocache.Cache

	mu      sync.Mutex
	state   State
	rules   map[string]api.RuleConfig
	lastErr error
}

// New creates a rule viewer.
func New(repo Repository) *Viewer {
	return &Viewer{
		repo:  repo,
		cache: gocache.New(cacheTTL, 10*time.Minute),
		state: StateLoading,
	}
}

// Load fetches the rule set, serving from cache while fresh.
func (v *Viewer) Load(ctx context.Context) error {
	if cached, ok := v.cache.Get(cacheKey); ok {
		v.mu.Lock()
		v.state = StateLoaded
		v.rules = cached.(map[string]api.RuleConfig)
		v.lastErr = nil
		v.mu.Unlock()
		return nil
	}
	return v.fetch(ctx)
}

// Reload discards the cache and re-issues the read.
func (v *Viewer) Reload(ctx context.Context) error {
	v.cache.Delete(cacheKey)
	return v.fetch(ctx)
}

func (v *Viewer) fetch(ctx context.Context) error {
	v.mu.Lock()
	v.state = StateLoading
	v.mu.Unlock()

	rules, err := v.repo.GetActiveRuleConfig(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = StateError
		v.lastErr = err
		return err
	}
	v.state = StateLoaded
	v.rules = rules
	v.lastErr = nil
	v.cache.Set(cacheKey, rules, cacheTTL)
	return nil
}

// State returns the viewer lifecycle state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the most recent fetch error.
func (v *Viewer) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Rules returns the rule set keyed by source type.
func (v *Viewer) Rules() map[string]api.RuleConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]api.RuleConfig, len(v.rules))
	for k, r := range v.rules {
		out[k] = r
	}
	return out
}

// SourceTypes returns the configured source types in sorted order, for
// stable rendering.
func (v *Viewer) SourceTypes() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.rules))
	for k := range v.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DescribeWindow renders a rule window for display, converting whole
// hours. Windows of at least an hour read as hours.
func DescribeWindow(mins int) string {
	if mins >= 60 {
		hours := mins / 60
		if mins%60 == 0 {
			if hours == 1 {
				return "1 hour"
			}
			return fmt.Sprintf("%d hours", hours)
		}
	}
	return fmt.Sprintf("%d mins", mins)
}

// DescribeRule summarizes one rule in a single line, rendering absent
// fields as not configured rather than zero.
func DescribeRule(r api.RuleConfig) string {
	parts := []string{}
	if r.EscalateIfCount != nil {
		p := fmt.Sprintf("escalate after %d violations", *r.EscalateIfCount)
		if r.WindowMins != nil {
			p += " within " + DescribeWindow(*r.WindowMins)
		}
		parts = append(parts, p)
	} else if r.WindowMins != nil {
		parts = append(parts, "window "+DescribeWindow(*r.WindowMins))
	}
	if r.AutoCloseIf != "" {
		parts = append(parts, fmt.Sprintf("auto-close if metadata contains %q", r.AutoCloseIf))
	}
	if len(parts) == 0 {
		return "no thresholds configured"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "; " + p
	}
	return out
}
