package tactics

import (
	"sync"
	"testing"
)

func TestFocusTrackerPairing(t *testing.T) {
	f := NewFocusTracker()
	f.Lock(7)
	before := f.Count(7)

	for range 5 {
		f.Lock(7)
	}
	for range 5 {
		f.Unlock(7)
	}
	if got := f.Count(7); got != before {
		t.Errorf("Count = %d, want %d", got, before)
	}

	f.Unlock(7)
	if got := f.Count(7); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
	if f.Len() != 0 {
		t.Errorf("zero entry retained: Len = %d", f.Len())
	}
}

func TestFocusTrackerUnderflow(t *testing.T) {
	f := NewFocusTracker()
	f.Unlock(3)
	f.Unlock(3)
	if got := f.Count(3); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
	f.Lock(3)
	if got := f.Count(3); got != 1 {
		t.Errorf("Count after lock = %d, want 1", got)
	}
}

func TestFocusTrackerIgnoresZeroID(t *testing.T) {
	f := NewFocusTracker()
	f.Lock(0)
	if f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}

func TestFocusTrackerResetAndSnapshot(t *testing.T) {
	f := NewFocusTracker()
	f.Lock(1)
	f.Lock(1)
	f.Lock(2)

	snap := f.Snapshot()
	if snap[1] != 2 || snap[2] != 1 || len(snap) != 2 {
		t.Errorf("snapshot = %v", snap)
	}
	snap[1] = 99
	if f.Count(1) != 2 {
		t.Error("snapshot aliases tracker state")
	}

	f.Reset()
	if f.Len() != 0 || f.Count(1) != 0 {
		t.Errorf("after reset Len = %d", f.Len())
	}
}

func TestFocusTrackerConcurrent(t *testing.T) {
	f := NewFocusTracker()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := EntityID(w%3 + 1)
			for range 1000 {
				f.Lock(id)
				if f.Count(id) < 1 {
					t.Errorf("Count(%d) < 1 while held", id)
				}
				f.Unlock(id)
			}
		}()
	}
	wg.Wait()
	if f.Len() != 0 {
		t.Errorf("Len = %d after balanced locks, want 0", f.Len())
	}
}
