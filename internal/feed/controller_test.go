package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vigilops/vigil/internal/api"
)

// fakeRepo scripts list/resolve responses and records calls.
type fakeRepo struct {
	mu           sync.Mutex
	listCalls    int
	resolveCalls int
	lastPage     int

	page    api.Page[api.Alert]
	listErr error
	gate    chan struct{} // when set, ListAlerts blocks until closed
}

func (f *fakeRepo) ListAlerts(ctx context.Context, page, size int, sortBy string) (api.Page[api.Alert], error) {
	f.mu.Lock()
	f.listCalls++
	f.lastPage = page
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return api.Page[api.Alert]{}, f.listErr
	}
	return f.page, nil
}

func (f *fakeRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeRepo) ResolveAlert(ctx context.Context, id int64) (api.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	return api.Alert{ID: id, Status: api.StatusResolved}, nil
}

func pageOf(number, totalPages int, ids ...int64) api.Page[api.Alert] {
	alerts := make([]api.Alert, len(ids))
	for i, id := range ids {
		alerts[i] = api.Alert{ID: id, Status: api.StatusOpen}
	}
	return api.Page[api.Alert]{
		Content:       alerts,
		TotalElements: int64(totalPages * len(ids)),
		TotalPages:    totalPages,
		Number:        number,
	}
}

func TestController_ServerEchoedPageIsCanonical(t *testing.T) {
	repo := &fakeRepo{page: pageOf(3, 4, 31, 32)}
	c := New(repo, 10)

	// Request page 9; the server echoes 3 (e.g. the data shrank).
	if err := c.FetchPage(context.Background(), 9); err != nil {
		t.Fatal(err)
	}
	if c.Page() != 3 {
		t.Errorf("stored page should be the server-echoed index 3, got %d", c.Page())
	}
	if c.State() != StateLoaded {
		t.Errorf("state = %s, want loaded", c.State())
	}
}

func TestController_ErrorKeepsLastGoodPage(t *testing.T) {
	repo := &fakeRepo{page: pageOf(0, 2, 1, 2, 3)}
	c := New(repo, 10)

	if err := c.FetchPage(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	repo.mu.Lock()
	repo.listErr = errors.New("connection refused")
	repo.mu.Unlock()

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("refresh should surface the fetch error")
	}
	if c.State() != StateError {
		t.Errorf("state = %s, want error", c.State())
	}
	if len(c.Alerts()) != 3 {
		t.Errorf("a failed poll must keep the previous page, got %d rows", len(c.Alerts()))
	}
	if c.Err() == nil {
		t.Error("Err should report the last failure")
	}

	// Recovery clears the error.
	repo.mu.Lock()
	repo.listErr = nil
	repo.mu.Unlock()
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateLoaded || c.Err() != nil {
		t.Error("a successful poll should clear the error state")
	}
}

func TestController_ResolveRefetchesCurrentPage(t *testing.T) {
	repo := &fakeRepo{page: pageOf(0, 1, 7)}
	c := New(repo, 10)
	if err := c.FetchPage(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	resolved, err := c.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != api.StatusResolved {
		t.Errorf("resolve should return the server's updated alert, got %s", resolved.Status)
	}
	if repo.resolveCalls != 1 {
		t.Errorf("resolveCalls = %d, want 1", repo.resolveCalls)
	}
	if repo.listCalls != 2 {
		t.Errorf("resolve should re-fetch the current page; listCalls = %d, want 2", repo.listCalls)
	}
}

func TestController_PageNavigationClamped(t *testing.T) {
	repo := &fakeRepo{page: pageOf(1, 2, 11, 12)}
	c := New(repo, 10)
	if err := c.FetchPage(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	calls := repo.listCalls

	// Already on the last page; NextPage must not issue a request.
	if err := c.NextPage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != calls {
		t.Error("NextPage past the end should not fetch")
	}

	repo.mu.Lock()
	repo.page = pageOf(0, 2, 1, 2)
	repo.mu.Unlock()
	if err := c.PrevPage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Page() != 0 {
		t.Errorf("page = %d, want 0", c.Page())
	}

	if err := c.PrevPage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.lastPage != 0 {
		t.Error("PrevPage at page zero should not fetch a negative page")
	}
}

func TestController_TeardownDropsLateResult(t *testing.T) {
	gate := make(chan struct{})
	repo := &fakeRepo{page: pageOf(2, 3, 99), gate: gate}
	c := New(repo, 10)

	done := make(chan error, 1)
	go func() { done <- c.FetchPage(context.Background(), 2) }()

	// Tear down while the request is in flight, then let it complete.
	for repo.calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	c.Teardown()
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if len(c.Alerts()) != 0 {
		t.Error("a completion from before teardown must not mutate state")
	}
	if c.Page() != 0 {
		t.Errorf("page = %d, want untouched 0", c.Page())
	}
}
