// Package spsc implements the Bounded SPSC Queue from spec.md §4.2: a
// lock-free single-producer/single-consumer ring buffer with a
// fixed power-of-two capacity. Producer tail and consumer head are padded
// to their own cache lines to avoid false sharing, the same concern the
// pack's disruptor-style ring buffer reference material pads its slots
// for (other_examples, rishavpaul-system-design, internal/disruptor).
package spsc

import (
	"errors"
	"sync/atomic"
)

// ErrCapacityNotPowerOfTwo is a configuration fault (spec.md §7):
// construction fails rather than silently rounding the capacity up.
var ErrCapacityNotPowerOfTwo = errors.New("spsc: capacity must be a power of two >= 2")

// paddedCounter is sized so a padded atomic counter occupies a full 64-byte
// cache line: 8 bytes of atomic.Uint64 plus 56 bytes of padding.
type paddedCounter struct {
	v   atomic.Uint64
	_   [56]byte
}

// Queue is a bounded, lock-free ring buffer intended for exactly one
// producer goroutine and one consumer goroutine. One slot always stays
// empty, so the queue holds at most Capacity()-1 items. Count() and IsEmpty()
// are approximate observations (spec.md §4.2); Clear is not safe to call
// concurrently with a producer or consumer.
type Queue[T any] struct {
	mask uint64
	buf  []T

	tail paddedCounter // next write index (producer-owned)
	head paddedCounter // next read index (consumer-owned)
}

// New constructs a Queue with the given power-of-two capacity.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, ErrCapacityNotPowerOfTwo
	}
	return &Queue[T]{
		mask: uint64(capacity - 1),
		buf:  make([]T, capacity),
	}, nil
}

// Capacity returns the fixed ring capacity.
func (q *Queue[T]) Capacity() int { return len(q.buf) }

// Count returns an approximate number of queued items; it may be stale
// with respect to a concurrently running producer or consumer.
func (q *Queue[T]) Count() int {
	tail := q.tail.v.Load()
	head := q.head.v.Load()
	return int(tail - head)
}

// IsEmpty is an approximate emptiness check (spec.md §4.2).
func (q *Queue[T]) IsEmpty() bool {
	return q.tail.v.Load() == q.head.v.Load()
}

// TryWrite attempts to enqueue item, returning false iff the buffer is
// full (holding Capacity()-1 items). The write to the backing slot happens-before the release-store
// of the tail counter, so a successful TryRead that observes the new
// tail is guaranteed to observe the written item (Go's memory model gives
// atomic loads/stores acquire/release semantics).
func (q *Queue[T]) TryWrite(item T) bool {
	tail := q.tail.v.Load()
	head := q.head.v.Load()
	if tail-head >= q.mask {
		return false
	}
	q.buf[tail&q.mask] = item
	q.tail.v.Store(tail + 1)
	return true
}

// TryRead attempts to dequeue the oldest item; ok is false iff the buffer
// is empty.
func (q *Queue[T]) TryRead() (item T, ok bool) {
	head := q.head.v.Load()
	tail := q.tail.v.Load()
	if head == tail {
		return item, false
	}
	item = q.buf[head&q.mask]
	var zero T
	q.buf[head&q.mask] = zero
	q.head.v.Store(head + 1)
	return item, true
}

// WriteBatch enqueues as many of items as fit, amortizing the
// synchronization cost of the tail store across the whole batch, and
// returns the number actually written.
func (q *Queue[T]) WriteBatch(items []T) int {
	tail := q.tail.v.Load()
	head := q.head.v.Load()
	free := int(q.mask - (tail - head))
	n := len(items)
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		q.buf[(tail+uint64(i))&q.mask] = items[i]
	}
	if n > 0 {
		q.tail.v.Store(tail + uint64(n))
	}
	return n
}

// ReadBatch dequeues into out, returning the number of items read.
func (q *Queue[T]) ReadBatch(out []T) int {
	head := q.head.v.Load()
	tail := q.tail.v.Load()
	available := int(tail - head)
	n := len(out)
	if n > available {
		n = available
	}
	var zero T
	for i := 0; i < n; i++ {
		idx := (head + uint64(i)) & q.mask
		out[i] = q.buf[idx]
		q.buf[idx] = zero
	}
	if n > 0 {
		q.head.v.Store(head + uint64(n))
	}
	return n
}

// Clear resets the queue to empty. It is NOT thread-safe: callable only
// when no producer nor consumer goroutine is active (spec.md §4.2).
func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.buf {
		q.buf[i] = zero
	}
	q.tail.v.Store(0)
	q.head.v.Store(0)
}
