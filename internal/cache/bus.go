// Package cache implements the cross-view invalidation bus. There is no
// server push channel, so a state-changing action propagates by publishing
// invalidation signals for a closed set of named caches; each polled view
// refreshes on its next opportunity.
package cache

import "sync"

// Key names one invalidatable cached view.
type Key string

const (
	// Alerts is the paginated alert feed.
	Alerts Key = "alerts"
	// TopOffenders is the driver leaderboard.
	TopOffenders Key = "topOffenders"
	// SeverityCounts is the severity tally.
	SeverityCounts Key = "severityCounts"
)

// Keys returns the complete, closed set of cache identities. A successful
// resolve must invalidate exactly this set.
func Keys() []Key {
	return []Key{Alerts, TopOffenders, SeverityCounts}
}

// Valid reports whether k names a known cache.
func Valid(k Key) bool {
	switch k {
	case Alerts, TopOffenders, SeverityCounts:
		return true
	}
	return false
}

// Bus is a synchronous publish/subscribe bus over cache keys.
type Bus struct {
	mu   sync.RWMutex
	subs map[Key][]func(Key)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Key][]func(Key))}
}

// Subscribe registers fn for the given keys, or for every key when none
// are named. Unknown keys are ignored.
func (b *Bus) Subscribe(fn func(Key), keys ...Key) {
	if len(keys) == 0 {
		keys = Keys()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		if !Valid(k) {
			continue
		}
		b.subs[k] = append(b.subs[k], fn)
	}
}

// Invalidate publishes each key to its subscribers, synchronously and in
// order. Unknown keys are dropped rather than delivered.
func (b *Bus) Invalidate(keys ...Key) {
	for _, k := range keys {
		if !Valid(k) {
			continue
		}
		b.mu.RLock()
		subs := make([]func(Key), len(b.subs[k]))
		copy(subs, b.subs[k])
		b.mu.RUnlock()
		for _, fn := range subs {
			fn(k)
		}
	}
}

// Collector accumulates invalidation signals for later draining. The TUI
// subscribes one collector to the whole key set and drains it on its next
// update cycle to force immediate refreshes.
type Collector struct {
	mu      sync.Mutex
	pending map[Key]bool
}

// NewCollector returns a collector subscribed to every key on bus.
func NewCollector(bus *Bus) *Collector {
	c := &Collector{pending: make(map[Key]bool)}
	bus.Subscribe(c.mark)
	return c
}

func (c *Collector) mark(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[k] = true
}

// Drain returns and clears the set of keys invalidated since the last
// drain, in the canonical Keys() order.
func (c *Collector) Drain() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	out := make([]Key, 0, len(c.pending))
	for _, k := range Keys() {
		if c.pending[k] {
			out = append(out, k)
		}
	}
	c.pending = make(map[Key]bool)
	return out
}
