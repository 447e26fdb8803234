package cache

import (
	"sync"
	"time"
)

// Dedup collapses near-simultaneous duplicate requests for the same
// key behind a short in-memory window. It is not a cache of record:
// dropping it loses no correctness, only spares duplicate network
// calls. Entries are pruned lazily on access to bound growth.
type Dedup struct {
	window time.Duration
	clock  Clock

	mu      sync.Mutex
	entries map[string]dedupEntry
}

type dedupEntry struct {
	value    any
	storedAt time.Time
}

// NewDedup creates a dedup window. A zero window disables it.
func NewDedup(window time.Duration, clock Clock) *Dedup {
	if clock == nil {
		clock = RealClock()
	}
	return &Dedup{
		window:  window,
		clock:   clock,
		entries: make(map[string]dedupEntry),
	}
}

// Get returns the value stored for key within the window. Expired
// entries encountered on the way are dropped.
func (d *Dedup) Get(key string) (any, bool) {
	if d == nil || d.window <= 0 {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	e, ok := d.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(e.storedAt) >= d.window {
		delete(d.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set records a resolved value for key.
func (d *Dedup) Set(key string, value any) {
	if d == nil || d.window <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune()
	d.entries[key] = dedupEntry{value: value, storedAt: d.clock.Now()}
}

// Delete removes one key.
func (d *Dedup) Delete(key string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

// Clear empties the window.
func (d *Dedup) Clear() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string]dedupEntry)
}

// prune drops expired entries. Caller holds the lock.
func (d *Dedup) prune() {
	now := d.clock.Now()
	for k, e := range d.entries {
		if now.Sub(e.storedAt) >= d.window {
			delete(d.entries, k)
		}
	}
}
