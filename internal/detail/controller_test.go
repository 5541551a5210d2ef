package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/cache"
)

func status(s api.Status) *api.Status { return &s }

// fakeRepo scripts alert/history/resolve responses and records calls.
type fakeRepo struct {
	mu           sync.Mutex
	alert        api.Alert
	alertErr     error
	history      []api.AlertHistory
	historyErr   error
	resolved     api.Alert
	resolveErr   error
	resolveCalls int
	historyCalls int
	resolveGate  chan struct{} // when set, ResolveAlert blocks until closed
}

func (f *fakeRepo) GetAlert(ctx context.Context, id int64) (api.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alertErr != nil {
		return api.Alert{}, f.alertErr
	}
	return f.alert, nil
}

func (f *fakeRepo) GetAlertHistory(ctx context.Context, id int64) ([]api.AlertHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]api.AlertHistory, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeRepo) ResolveAlert(ctx context.Context, id int64) (api.Alert, error) {
	f.mu.Lock()
	gate := f.resolveGate
	f.resolveCalls++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolveErr != nil {
		return api.Alert{}, f.resolveErr
	}
	return f.resolved, nil
}

func openAlert(id int64) api.Alert {
	return api.Alert{ID: id, SourceType: "overspeed", Severity: api.SeverityCritical, Status: api.StatusOpen}
}

func loadController(t *testing.T, repo *fakeRepo) (*Controller, *cache.Collector) {
	t.Helper()
	bus := cache.NewBus()
	collector := cache.NewCollector(bus)
	c := New(repo, bus)
	if err := c.Load(context.Background(), repo.alert.ID); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return c, collector
}

func TestController_LoadAlertAndHistory(t *testing.T) {
	repo := &fakeRepo{
		alert: openAlert(5),
		history: []api.AlertHistory{
			{AlertID: 5, PreviousStatus: nil, NewStatus: api.StatusOpen},
			{AlertID: 5, PreviousStatus: status(api.StatusOpen), NewStatus: api.StatusEscalated},
		},
	}
	c, _ := loadController(t, repo)

	if c.State() != StateLoaded {
		t.Fatalf("state = %s, want loaded", c.State())
	}
	if got := c.Alert(); got == nil || got.ID != 5 {
		t.Errorf("alert not loaded: %+v", got)
	}
	if len(c.History()) != 2 {
		t.Errorf("history rows = %d, want 2", len(c.History()))
	}
	if !c.CanResolve() {
		t.Error("an OPEN alert should be resolvable")
	}
}

func TestController_LoadNotFound(t *testing.T) {
	repo := &fakeRepo{alert: openAlert(9)}
	repo.alertErr = &api.NotFoundError{Resource: "alert", ID: 9}

	bus := cache.NewBus()
	c := New(repo, bus)
	if err := c.Load(context.Background(), 9); err != nil {
		t.Fatalf("not-found should not be an error, got %v", err)
	}
	if c.State() != StateNotFound {
		t.Errorf("state = %s, want notFound", c.State())
	}
	if c.CanResolve() {
		t.Error("a missing alert must not be resolvable")
	}
}

func TestController_LoadOtherFailureReturned(t *testing.T) {
	repo := &fakeRepo{alert: openAlert(9)}
	repo.alertErr = errors.New("boom")

	c := New(repo, cache.NewBus())
	if err := c.Load(context.Background(), 9); err == nil {
		t.Fatal("a non-notfound failure must be returned to the caller")
	}
}

func TestController_ResolveTerminalRejectedLocally(t *testing.T) {
	repo := &fakeRepo{alert: api.Alert{ID: 3, Status: api.StatusAutoClosed}}
	c, collector := loadController(t, repo)

	err := c.Resolve(context.Background())
	if !errors.Is(err, ErrNotResolvable) {
		t.Fatalf("err = %v, want ErrNotResolvable", err)
	}
	if repo.resolveCalls != 0 {
		t.Error("a terminal alert must be rejected before any request is issued")
	}
	if keys := collector.Drain(); keys != nil {
		t.Errorf("a rejected resolve must not invalidate, got %v", keys)
	}
}

func TestController_ResolvePublishesInvalidationsExactlyOnce(t *testing.T) {
	repo := &fakeRepo{
		alert:    openAlert(7),
		resolved: api.Alert{ID: 7, Status: api.StatusResolved},
		history: []api.AlertHistory{
			{AlertID: 7, PreviousStatus: nil, NewStatus: api.StatusOpen},
		},
	}
	c, collector := loadController(t, repo)

	if err := c.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}

	keys := collector.Drain()
	if len(keys) != 3 {
		t.Fatalf("resolve must invalidate the full closed set, got %v", keys)
	}
	if keys[0] != cache.Alerts || keys[1] != cache.TopOffenders || keys[2] != cache.SeverityCounts {
		t.Errorf("unexpected invalidation set: %v", keys)
	}
	if second := collector.Drain(); second != nil {
		t.Errorf("signals must fire exactly once, got %v", second)
	}
	if got := c.Alert(); got == nil || got.Status != api.StatusResolved {
		t.Error("the resolve response should replace the loaded alert without a re-fetch")
	}
	if c.CanResolve() {
		t.Error("a resolved alert must not be resolvable again")
	}
}

func TestController_ResolveFailureLeavesStateAndNoSignals(t *testing.T) {
	repo := &fakeRepo{alert: openAlert(4)}
	repo.resolveErr = errors.New("503")
	c, collector := loadController(t, repo)

	if err := c.Resolve(context.Background()); err == nil {
		t.Fatal("resolve failure should be returned")
	}
	if keys := collector.Drain(); keys != nil {
		t.Errorf("a failed resolve must not invalidate, got %v", keys)
	}
	if got := c.Alert(); got.Status != api.StatusOpen {
		t.Errorf("a failed resolve must leave the alert unchanged, got %s", got.Status)
	}
	if !c.CanResolve() {
		t.Error("the action should be retryable after a failure")
	}
}

func TestController_HistoryRefetchFailureKeepsOldHistory(t *testing.T) {
	repo := &fakeRepo{
		alert:    openAlert(6),
		resolved: api.Alert{ID: 6, Status: api.StatusResolved},
		history: []api.AlertHistory{
			{AlertID: 6, PreviousStatus: nil, NewStatus: api.StatusOpen},
		},
	}
	c, _ := loadController(t, repo)

	repo.mu.Lock()
	repo.historyErr = errors.New("timeout")
	repo.mu.Unlock()

	if err := c.Resolve(context.Background()); err != nil {
		t.Fatalf("resolve itself succeeded; history refresh failure must not fail it: %v", err)
	}
	if c.Alert().Status != api.StatusResolved {
		t.Error("alert should still update from the resolve response")
	}
	if len(c.History()) != 1 {
		t.Error("the pre-resolve history should be kept when the refresh fails")
	}
}

func TestController_InvalidationsFireEvenAfterClose(t *testing.T) {
	gate := make(chan struct{})
	repo := &fakeRepo{
		alert:       openAlert(8),
		resolved:    api.Alert{ID: 8, Status: api.StatusResolved},
		resolveGate: gate,
	}
	c, collector := loadController(t, repo)

	done := make(chan error, 1)
	go func() { done <- c.Resolve(context.Background()) }()

	for {
		repo.mu.Lock()
		started := repo.resolveCalls > 0
		repo.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// The user closes the drawer while the resolve is on the wire. The
	// server-side commit still happened, so the signals must still fire.
	c.Close()
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if keys := collector.Drain(); len(keys) != 3 {
		t.Errorf("invalidations must fire even after close, got %v", keys)
	}
	if c.Alert() != nil {
		t.Error("a closed drill-down must not apply the late resolve response")
	}
}
