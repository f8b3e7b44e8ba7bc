package status

import (
	"sync"
	"testing"
)

func TestCounterCachedPointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counter(Merges)
	b := r.Counter(Merges)
	if a != b {
		t.Fatal("Expected same pointer for same name")
	}
	a.Add(2)
	if b.Load() != 2 {
		t.Errorf("Expected 2, got %d", b.Load())
	}
}

func TestSnapshotSortedAndReset(t *testing.T) {
	r := NewRegistry()
	r.Counter(Refills).Add(3)
	r.Counter(Merges).Add(1)
	r.Gauge(TimeRemaining).Set(12.5)

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(snap))
	}
	for i := 1; i < len(snap); i++ {
		if snap[i-1].Name > snap[i].Name {
			t.Errorf("Snapshot not sorted: %v", snap)
		}
	}
	if snap[2].Name != TimeRemaining || snap[2].Value != 12.5 {
		t.Errorf("Expected gauge last, got %+v", snap[2])
	}

	r.Reset()
	for _, s := range r.Snapshot() {
		if s.Value != 0 {
			t.Errorf("Expected %s reset, got %v", s.Name, s.Value)
		}
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counter(Moves).Add(1)
		}()
	}
	wg.Wait()
	if got := r.Counter(Moves).Load(); got != 16 {
		t.Errorf("Expected 16, got %d", got)
	}
}
