// Package sortedlevels implements the Sorted Level Container from
// spec.md §4.1: an ordered associative container over a comparable key,
// backed by two parallel contiguous slices rather than a tree or hash
// map. With n capped around 100-200 visible price levels, a flat array
// with binary search beats a tree-based dictionary on cache locality and
// gives predictable worst-case latency — the exact tradeoff spec.md calls
// out in its Rationale. The teacher's own BuyBook/SellBook
// (internal/book/{buy,sell}_book.go) took the same "slice plus
// Push/Pop/Swap" shape for a heap; this container generalizes that shape
// to full binary-searchable ordering instead of heap order, which is
// what both the Order Book (bid/ask price levels) and the MBO Manager
// (per-side OrderLevels) need.
package sortedlevels

import "sort"

// Container is an ordered associative array over a totally ordered key K
// and arbitrary value V. Keys are kept strictly ascending by less.
type Container[K any, V any] struct {
	less   func(a, b K) bool
	keys   []K
	values []V
}

// New constructs an empty Container ordered by less.
func New[K any, V any](less func(a, b K) bool) *Container[K, V] {
	return &Container[K, V]{less: less}
}

// NewWithCapacity preallocates room for capacity entries, avoiding
// reallocation during warm-up as spec.md §4.1 recommends.
func NewWithCapacity[K any, V any](less func(a, b K) bool, capacity int) *Container[K, V] {
	return &Container[K, V]{
		less:   less,
		keys:   make([]K, 0, capacity),
		values: make([]V, 0, capacity),
	}
}

// Count returns the number of entries currently stored.
func (c *Container[K, V]) Count() int { return len(c.keys) }

// Capacity returns the current backing capacity.
func (c *Container[K, V]) Capacity() int { return cap(c.keys) }

// indexOf returns the position of key if present, and whether it was found.
// It is the binary search primitive every other lookup is built on.
func (c *Container[K, V]) indexOf(key K) (int, bool) {
	i := c.LowerBound(key)
	if i < len(c.keys) && !c.less(key, c.keys[i]) && !c.less(c.keys[i], key) {
		return i, true
	}
	return i, false
}

// TryGet returns the value stored at key, if present.
func (c *Container[K, V]) TryGet(key K) (V, bool) {
	if i, ok := c.indexOf(key); ok {
		return c.values[i], true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value at key. Existing keys are replaced in
// place in O(log n) + O(1); new keys are inserted at their sorted
// position with an O(n) shift, as spec.md §4.1 describes. Capacity grows
// geometrically (doubling) when the backing slices are full.
func (c *Container[K, V]) Put(key K, value V) {
	i, found := c.indexOf(key)
	if found {
		c.values[i] = value
		return
	}
	c.growIfFull()
	c.keys = append(c.keys, key)
	c.values = append(c.values, value)
	copy(c.keys[i+1:], c.keys[i:len(c.keys)-1])
	copy(c.values[i+1:], c.values[i:len(c.values)-1])
	c.keys[i] = key
	c.values[i] = value
}

// growIfFull doubles backing capacity (or sets it to 8 when it is zero) before an insert would
// otherwise trigger append's own reallocation; kept explicit so capacity
// growth is geometric and predictable rather than left to append's
// amortized-but-unspecified growth factor.
func (c *Container[K, V]) growIfFull() {
	if len(c.keys) < cap(c.keys) {
		return
	}
	newCap := cap(c.keys) * 2
	if newCap == 0 {
		newCap = 8
	}
	newKeys := make([]K, len(c.keys), newCap)
	newValues := make([]V, len(c.values), newCap)
	copy(newKeys, c.keys)
	copy(newValues, c.values)
	c.keys = newKeys
	c.values = newValues
}

// Remove deletes the entry at key, if present, reporting whether anything
// was removed.
func (c *Container[K, V]) Remove(key K) bool {
	i, found := c.indexOf(key)
	if !found {
		return false
	}
	copy(c.keys[i:], c.keys[i+1:])
	copy(c.values[i:], c.values[i+1:])
	var zeroK K
	var zeroV V
	c.keys[len(c.keys)-1] = zeroK
	c.values[len(c.values)-1] = zeroV
	c.keys = c.keys[:len(c.keys)-1]
	c.values = c.values[:len(c.values)-1]
	return true
}

// GetByIndex returns the value at position i. The caller must ensure
// 0 <= i < Count(); out-of-range access panics, matching spec.md §4.1's
// "undefined outside range; implementations must return a sentinel or
// fail in debug" via Go's own slice-bounds panic, which is the idiomatic
// "fail fast in debug and release alike" behavior for this language.
func (c *Container[K, V]) GetByIndex(i int) V { return c.values[i] }

// GetKeyByIndex returns the key at position i, with the same bounds
// contract as GetByIndex.
func (c *Container[K, V]) GetKeyByIndex(i int) K { return c.keys[i] }

// LowerBound returns the smallest index i such that keys[i] >= key, or
// Count() if no such index exists.
func (c *Container[K, V]) LowerBound(key K) int {
	return sort.Search(len(c.keys), func(i int) bool {
		return !c.less(c.keys[i], key)
	})
}

// UpperBound returns the smallest index i such that keys[i] > key, or
// Count() if no such index exists.
func (c *Container[K, V]) UpperBound(key K) int {
	return sort.Search(len(c.keys), func(i int) bool {
		return c.less(key, c.keys[i])
	})
}

// GetRange returns a contiguous view over values[start:start+count],
// clamped to the container's bounds.
func (c *Container[K, V]) GetRange(start, count int) []V {
	if start >= len(c.values) {
		return nil
	}
	end := start + count
	if end > len(c.values) {
		end = len(c.values)
	}
	return c.values[start:end]
}

// Keys returns a contiguous view over the stored keys, ascending by less.
func (c *Container[K, V]) Keys() []K { return c.keys }

// Values returns a contiguous view over the stored values, paired
// index-for-index with Keys().
func (c *Container[K, V]) Values() []V { return c.values }

// Clear empties the container without releasing backing capacity.
func (c *Container[K, V]) Clear() {
	c.keys = c.keys[:0]
	c.values = c.values[:0]
}
