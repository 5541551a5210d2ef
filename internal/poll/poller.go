// Package poll schedules the independent refresh loops that keep the
// alert views fresh. Each loop is single-flight: a tick that arrives while
// the previous request is still outstanding is skipped, never queued, so a
// slow server cannot build an unbounded backlog. Loops are independent of
// each other and individually cancellable.
package poll

import (
	"sync"
	"time"
)

// Loop identifies one polling loop.
type Loop string

const (
	// LoopFeed refreshes the paginated alert feed.
	LoopFeed Loop = "feed"
	// LoopSeverity refreshes the severity tally.
	LoopSeverity Loop = "severity"
	// LoopOffenders refreshes the top-offender leaderboard.
	LoopOffenders Loop = "offenders"
)

type loopState struct {
	interval   time.Duration
	inFlight   bool
	generation uint64
	stopped    bool
}

// Poller tracks in-flight state and generations for a set of loops. It
// does not own timers; the event loop drives it with Begin/Finish pairs
// and schedules the next tick after each Finish.
type Poller struct {
	mu    sync.Mutex
	loops map[Loop]*loopState
}

// New returns a poller with no registered loops.
func New() *Poller {
	return &Poller{loops: make(map[Loop]*loopState)}
}

// Register adds a loop with its refresh interval. Re-registering an
// existing loop resets it to a runnable state.
func (p *Poller) Register(id Loop, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.loops[id]
	next := &loopState{interval: interval}
	if prev != nil {
		next.generation = prev.generation + 1
	}
	p.loops[id] = next
}

// Interval returns the loop's refresh period, or zero for unknown loops.
func (p *Poller) Interval(id Loop) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.loops[id]; st != nil {
		return st.interval
	}
	return 0
}

// Begin attempts to start a fetch for the loop. It returns the generation
// to stamp on the eventual completion and whether the fetch may proceed.
// A false return means either a request is already outstanding (skip this
// tick) or the loop is stopped.
func (p *Poller) Begin(id Loop) (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.loops[id]
	if st == nil || st.stopped || st.inFlight {
		return 0, false
	}
	st.inFlight = true
	return st.generation, true
}

// Finish records completion of a fetch started at gen. It returns whether
// the result may be applied: a completion from a superseded generation or
// a stopped loop must be a no-op on state.
func (p *Poller) Finish(id Loop, gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.loops[id]
	if st == nil {
		return false
	}
	if st.generation == gen {
		st.inFlight = false
	}
	return st.generation == gen && !st.stopped
}

// InFlight reports whether the loop has an outstanding request.
func (p *Poller) InFlight(id Loop) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.loops[id]
	return st != nil && st.inFlight
}

// Stop cancels one loop. The in-flight request, if any, keeps running but
// its completion will not be applied; generations guarantee that.
func (p *Poller) Stop(id Loop) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.loops[id]; st != nil {
		st.stopped = true
		st.generation++
		st.inFlight = false
	}
}

// StopAll cancels every loop, for view teardown.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, st := range p.loops {
		st.stopped = true
		st.generation++
		st.inFlight = false
	}
}

// Resume restarts a stopped loop without changing its interval. Completions
// from before the stop remain unappliable.
func (p *Poller) Resume(id Loop) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.loops[id]; st != nil {
		st.stopped = false
	}
}

// Stopped reports whether the loop is cancelled.
func (p *Poller) Stopped(id Loop) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.loops[id]
	return st == nil || st.stopped
}
