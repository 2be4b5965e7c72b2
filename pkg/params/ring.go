package params

import "sync/atomic"

// ringCapacity is fixed at 256 entries, sized as a power of two so the
// index wrap is a simple mask. One slot is always left unused (see
// Push) so the effective capacity a caller ever observes is 255.
const ringCapacity = 256

// effectiveCapacity is the usable depth of the ring: one slot short of
// the backing array. An overflowing Push drops the newest entry, so the
// oldest 255 changes always survive to the next Drain.
const effectiveCapacity = ringCapacity - 1

// Change is one parameter edit the plug-in's GUI performed, captured by
// the host's component-handler callback for the protocol dispatcher to
// drain and forward to the client.
type Change struct {
	ID    uint32
	Value float64
}

// Ring is a single-producer/single-consumer, fixed-capacity, drop-newest
// ring buffer. The GUI thread (inside the plug-in, calling back into
// this host's IComponentHandler) is the sole producer; the protocol
// dispatch thread is the sole consumer, draining on GetParamChanges.
// Neither side ever blocks: a full ring drops the incoming change, and
// an empty ring just yields no drained entries.
//
// head/tail are monotonically increasing counts, not wrapped indices;
// the wrap happens only when indexing into the backing array. This is
// the same construction a lock-free SPSC ring needs regardless of
// language — compare-free on the fast path, because there is exactly
// one writer and one reader and each only ever touches its own counter
// plus a relaxed read of the other's.
type Ring struct {
	buf  [ringCapacity]Change
	head atomic.Uint64 // next write position; producer-owned
	tail atomic.Uint64 // next read position; consumer-owned
}

func NewRing() *Ring {
	return &Ring{}
}

// Push appends a change. It reports false if the ring was full, in
// which case the change is dropped — the newest update loses, not the
// oldest, since performEdit callbacks are delivered in order and the
// oldest entries are closer to being drained.
func (r *Ring) Push(c Change) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if head-tail >= effectiveCapacity {
		return false
	}
	r.buf[head%ringCapacity] = c
	r.head.Store(head + 1)
	return true
}

// Drain removes and returns every change queued since the last Drain.
// The count drained is exactly the producer-consumer distance observed
// at the moment Drain starts; changes pushed concurrently with this
// call are picked up on the next Drain, never partially.
func (r *Ring) Drain() []Change {
	tail := r.tail.Load()
	head := r.head.Load()
	if head == tail {
		return nil
	}
	out := make([]Change, 0, head-tail)
	for i := tail; i != head; i++ {
		out = append(out, r.buf[i%ringCapacity])
	}
	r.tail.Store(head)
	return out
}

// Len reports the number of undrained entries. For diagnostics only;
// the consumer should call Drain, not poll Len then Drain.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}
