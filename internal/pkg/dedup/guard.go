// Package dedup keeps a bounded in-memory record of handled event IDs so
// redelivered Slack events are acknowledged without being processed twice.
package dedup

import "sync"

// DefaultMaxEntries bounds the guard before it evicts.
const DefaultMaxEntries = 1000

// Guard is a process-local seen-set. When an insert pushes the set past its
// cap the whole set is cleared, the fresh entry included; redeliveries right
// after a clear may slip through, which is acceptable for an at-least-once
// event stream.
type Guard struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	maxEntries int
}

// NewGuard creates a guard holding at most maxEntries IDs; values below one
// fall back to DefaultMaxEntries.
func NewGuard(maxEntries int) *Guard {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Guard{
		seen:       make(map[string]struct{}),
		maxEntries: maxEntries,
	}
}

// IsProcessed reports whether id has already been marked.
func (g *Guard) IsProcessed(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[id]
	return ok
}

// MarkProcessed records id, clearing the whole set when the insert
// overflows the cap.
func (g *Guard) MarkProcessed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mark(id)
}

// CheckAndMark atomically records id and reports whether it was already
// present. Handlers call this once per event so check and insert cannot race.
func (g *Guard) CheckAndMark(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[id]; ok {
		return true
	}
	g.mark(id)
	return false
}

// Len returns the current number of tracked IDs.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

func (g *Guard) mark(id string) {
	g.seen[id] = struct{}{}
	if len(g.seen) > g.maxEntries {
		g.seen = make(map[string]struct{})
	}
}
