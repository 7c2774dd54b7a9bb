package tactics

import "sync"

// FocusTracker counts how many brains currently hold each entity as their
// locked target. One tracker is shared by every brain in a simulation.
type FocusTracker struct {
	mu     sync.Mutex
	counts map[EntityID]int
}

func NewFocusTracker() *FocusTracker {
	return &FocusTracker{counts: make(map[EntityID]int)}
}

// Count returns the number of locks on id, 0 if untracked.
func (f *FocusTracker) Count(id EntityID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id]
}

// Lock adds one lock on id.
func (f *FocusTracker) Lock(id EntityID) {
	if id == 0 {
		return
	}
	f.mu.Lock()
	f.counts[id]++
	f.mu.Unlock()
}

// Unlock removes one lock on id. The entry is deleted when it reaches zero;
// unlocking an untracked id does nothing.
func (f *FocusTracker) Unlock(id EntityID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.counts[id]
	if !ok {
		return
	}
	if n <= 1 {
		delete(f.counts, id)
		return
	}
	f.counts[id] = n - 1
}

// Reset drops every count. Used when a simulation restarts.
func (f *FocusTracker) Reset() {
	f.mu.Lock()
	clear(f.counts)
	f.mu.Unlock()
}

// Len returns the number of tracked entities.
func (f *FocusTracker) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.counts)
}

// Snapshot returns a copy of the current counts.
func (f *FocusTracker) Snapshot() map[EntityID]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[EntityID]int, len(f.counts))
	for id, n := range f.counts {
		out[id] = n
	}
	return out
}
