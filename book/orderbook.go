package book

import (
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/sortedlevels"
)

// Config configures a fresh OrderBook: the instrument's tick size and the
// maximum number of levels the caller expects to need headroom for.
// Overflow beyond MaxLevels is not hard-enforced by the core (spec.md
// §4.3): callers size MaxLevels to the worst-case visible depth plus
// headroom, and MaxLevels here is used only to preallocate container
// capacity.
type Config struct {
	TickSize  pricing.TickSize
	MaxLevels int
}

// priceLess orders both containers ascending by price ticks; bids
// and asks are symmetric contiguous containers, and "highest bid" /
// "lowest ask" are expressed by indexing from the two different ends
// (spec.md §4.3 top-of-book accessors), not by using two different
// comparators.
func priceLess(a, b pricing.Price) bool { return a.Less(b) }

// OrderBook holds the two Sorted Level Containers (bids, asks), a dirty
// change log, and the structural-change flag (spec.md §4.3).
type OrderBook struct {
	tickSize  pricing.TickSize
	maxLevels int

	bids *sortedlevels.Container[pricing.Price, *Level]
	asks *sortedlevels.Container[pricing.Price, *Level]

	dirty            []DirtyChange
	structuralChange bool
}

// New constructs an empty OrderBook.
func New(cfg Config) *OrderBook {
	cap := cfg.MaxLevels
	if cap <= 0 {
		cap = 16
	}
	return &OrderBook{
		tickSize:  cfg.TickSize,
		maxLevels: cfg.MaxLevels,
		bids:      sortedlevels.NewWithCapacity[pricing.Price, *Level](priceLess, cap),
		asks:      sortedlevels.NewWithCapacity[pricing.Price, *Level](priceLess, cap),
	}
}

// TickSize returns the instrument's configured tick size.
func (b *OrderBook) TickSize() pricing.TickSize { return b.tickSize }

func (b *OrderBook) sideContainer(side pricing.Side) *sortedlevels.Container[pricing.Price, *Level] {
	if side == pricing.Bid {
		return b.bids
	}
	return b.asks
}

// UpdateLevel applies a PriceLevel update (spec.md §4.3). quantity == 0
// removes the level (a no-op if absent); quantity > 0 inserts or
// replaces it. Either an addition or removal sets structuralChange, and
// the level's IsDirty flag is always set on a successful application.
func (b *OrderBook) UpdateLevel(price pricing.Price, quantity uint64, numOrders uint32, side pricing.Side) {
	container := b.sideContainer(side)

	if quantity == 0 {
		if container.Remove(price) {
			b.structuralChange = true
			b.dirty = append(b.dirty, DirtyChange{Price: price, Side: side, IsRemoval: true})
		}
		return
	}

	existing, found := container.TryGet(price)
	if found {
		existing.Quantity = quantity
		existing.NumOrders = numOrders
		existing.IsDirty = true
		b.dirty = append(b.dirty, DirtyChange{Price: price, Side: side})
		return
	}

	container.Put(price, &Level{
		Price:     price,
		Quantity:  quantity,
		NumOrders: numOrders,
		Side:      side,
		IsDirty:   true,
	})
	b.structuralChange = true
	b.dirty = append(b.dirty, DirtyChange{Price: price, Side: side, IsAddition: true})
}

// MarkOwnOrder updates the HasOwnOrders flag on an existing level and
// re-marks it dirty; a no-op (not a fault) if the level is absent
// (spec.md §4.3, §7).
func (b *OrderBook) MarkOwnOrder(price pricing.Price, side pricing.Side, hasOwnOrder bool) {
	level, found := b.sideContainer(side).TryGet(price)
	if !found {
		return
	}
	level.HasOwnOrders = hasOwnOrder
	level.IsDirty = true
}

// TryGetLevel returns the level at (price, side), if present.
func (b *OrderBook) TryGetLevel(price pricing.Price, side pricing.Side) (*Level, bool) {
	return b.sideContainer(side).TryGet(price)
}

// BestBid returns the highest bid price, if any bids are resting.
func (b *OrderBook) BestBid() (pricing.Price, bool) {
	if b.bids.Count() == 0 {
		return pricing.Price{}, false
	}
	return b.bids.GetKeyByIndex(b.bids.Count() - 1), true
}

// BestAsk returns the lowest ask price, if any asks are resting.
func (b *OrderBook) BestAsk() (pricing.Price, bool) {
	if b.asks.Count() == 0 {
		return pricing.Price{}, false
	}
	return b.asks.GetKeyByIndex(0), true
}

// TopBids returns up to n of the highest bids, ascending by price (so the
// caller's natural "last is best" convention holds, matching the
// snapshot's own bid ordering).
func (b *OrderBook) TopBids(n int) []*Level {
	count := b.bids.Count()
	if n > count {
		n = count
	}
	return b.bids.GetRange(count-n, n)
}

// TopAsks returns up to n of the lowest asks, ascending by price.
func (b *OrderBook) TopAsks(n int) []*Level {
	count := b.asks.Count()
	if n > count {
		n = count
	}
	return b.asks.GetRange(0, n)
}

// BidsInRange returns all bid levels with lo <= price <= hi, ascending.
func (b *OrderBook) BidsInRange(lo, hi pricing.Price) []*Level {
	start := b.bids.LowerBound(lo)
	end := b.bids.UpperBound(hi)
	return b.bids.GetRange(start, end-start)
}

// AsksInRange returns all ask levels with lo <= price <= hi, ascending.
func (b *OrderBook) AsksInRange(lo, hi pricing.Price) []*Level {
	start := b.asks.LowerBound(lo)
	end := b.asks.UpperBound(hi)
	return b.asks.GetRange(start, end-start)
}

// ConsumeDirtyState atomically returns and clears the dirty log along
// with the structural-change flag. Callers must invoke this exactly once
// per emitted snapshot (spec.md §4.3, §8 invariant 5).
func (b *OrderBook) ConsumeDirtyState() ([]DirtyChange, bool) {
	changes := b.dirty
	structural := b.structuralChange
	b.dirty = nil
	b.structuralChange = false
	return changes, structural
}

// ClearDirtyFlags clears IsDirty on every stored level after a snapshot
// has been committed.
func (b *OrderBook) ClearDirtyFlags() {
	for _, l := range b.bids.Values() {
		l.IsDirty = false
	}
	for _, l := range b.asks.Values() {
		l.IsDirty = false
	}
}

// Clear resets both containers and all dirty state, preserving
// configuration (tick size, max levels) per spec.md §3's Lifecycle rule.
func (b *OrderBook) Clear() {
	b.bids.Clear()
	b.asks.Clear()
	b.dirty = nil
	b.structuralChange = false
}
