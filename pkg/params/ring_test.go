package params

import (
	"sync"
	"testing"
)

func TestRingDrainReturnsPushedOrder(t *testing.T) {
	r := NewRing()
	r.Push(Change{ID: 1, Value: 0.1})
	r.Push(Change{ID: 2, Value: 0.2})

	got := r.Drain()
	want := []Change{{1, 0.1}, {2, 0.2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRingDrainEmptyReturnsNil(t *testing.T) {
	r := NewRing()
	if got := r.Drain(); got != nil {
		t.Errorf("expected nil drain of empty ring, got %v", got)
	}
}

func TestRingDropsNewestOnOverflow(t *testing.T) {
	r := NewRing()
	for i := 0; i < effectiveCapacity; i++ {
		if !r.Push(Change{ID: uint32(i), Value: float64(i)}) {
			t.Fatalf("unexpected drop before reaching capacity at i=%d", i)
		}
	}
	if r.Push(Change{ID: 999, Value: 9.9}) {
		t.Fatal("expected push to a full ring to report false")
	}

	got := r.Drain()
	if len(got) != effectiveCapacity {
		t.Fatalf("expected %d entries, got %d", effectiveCapacity, len(got))
	}
	if got[0].ID != 0 {
		t.Errorf("expected oldest entry retained, got ID %d first", got[0].ID)
	}
}

// TestRingOverflowBeyondCapacityKeepsOldest255 pushes one more change
// than the ring can ever hold and checks the boundary the drop-newest
// policy is supposed to guarantee: the 256th push is refused, and
// Drain still returns exactly the oldest 255 entries, not 256.
func TestRingOverflowBeyondCapacityKeepsOldest255(t *testing.T) {
	r := NewRing()
	const pushed = 257
	accepted := 0
	for i := 0; i < pushed; i++ {
		if r.Push(Change{ID: uint32(i), Value: float64(i)}) {
			accepted++
		}
	}
	if accepted != effectiveCapacity {
		t.Fatalf("expected %d accepted pushes, got %d", effectiveCapacity, accepted)
	}

	got := r.Drain()
	if len(got) != effectiveCapacity {
		t.Fatalf("expected Drain to return %d entries, got %d", effectiveCapacity, len(got))
	}
	if got[0].ID != 0 {
		t.Errorf("expected oldest surviving entry ID 0 first, got %d", got[0].ID)
	}
	if last := got[len(got)-1].ID; last != uint32(effectiveCapacity-1) {
		t.Errorf("expected newest surviving entry ID %d last, got %d", effectiveCapacity-1, last)
	}
}

// TestRingConcurrentProducerConsumer exercises the actual SPSC access
// pattern from two goroutines rather than t.Parallel() subtests, which
// would violate the single-producer/single-consumer assumption this
// ring relies on.
func TestRingConcurrentProducerConsumer(t *testing.T) {
	r := NewRing()
	const n = 10_000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.Push(Change{ID: uint32(i), Value: float64(i)}) {
				// ring momentarily full; retry until the consumer drains
			}
		}
	}()

	received := 0
	go func() {
		defer wg.Done()
		for received < n {
			drained := r.Drain()
			received += len(drained)
		}
	}()

	wg.Wait()
	if received != n {
		t.Errorf("expected to receive %d changes, got %d", n, received)
	}
}
