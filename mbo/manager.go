package mbo

import (
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/sortedlevels"
)

// location is the index entry stored per orderId: where that order
// currently rests.
type location struct {
	price pricing.Price
	side  pricing.Side
}

func priceLess(a, b pricing.Price) bool { return a.Less(b) }

// Manager is the MBO Manager (spec.md §4.4): two Sorted Level Containers
// over OrderLevels, a global orderId -> (price, side) index, and a
// non-owning reference to the Order Book it is the sole writer to in MBO
// mode.
type Manager struct {
	book *book.OrderBook

	bids *sortedlevels.Container[pricing.Price, *Level]
	asks *sortedlevels.Container[pricing.Price, *Level]

	index map[uint64]location

	bidsArraysDirty bool
	asksArraysDirty bool
	cachedBidPrices map[string][]Order
	cachedAskPrices map[string][]Order
}

// New constructs a Manager bound to the given (non-owning) Order Book.
// The Orchestrator owns both the book and the Manager; the Manager only
// borrows the book, per spec.md §9's "model this as non-owning borrow"
// resolution of the MBO-Manager/Order-Book cyclic reference.
func New(b *book.OrderBook) *Manager {
	return &Manager{
		book:  b,
		bids:  sortedlevels.New[pricing.Price, *Level](priceLess),
		asks:  sortedlevels.New[pricing.Price, *Level](priceLess),
		index: make(map[uint64]location),
	}
}

func (m *Manager) side(side pricing.Side) *sortedlevels.Container[pricing.Price, *Level] {
	if side == pricing.Bid {
		return m.bids
	}
	return m.asks
}

func (m *Manager) markDirty(side pricing.Side) {
	if side == pricing.Bid {
		m.bidsArraysDirty = true
	} else {
		m.asksArraysDirty = true
	}
}

// Process dispatches an OrderUpdate to Add/Modify/Delete by typ,
// mirroring spec.md §4.5's "queue_order_update" fan-in on the batcher
// side; kept here so the Manager is a single entry point hosts driving
// it directly (bypassing the batcher) can also use.
func (m *Manager) Process(u Update, typ UpdateType) {
	switch typ {
	case Add:
		m.Add(u)
	case Modify:
		m.Modify(u)
	case Delete:
		m.Delete(u.OrderID)
	}
}

// Add implements spec.md §4.4's Add algorithm. A duplicate orderId
// overwrites the existing entry with the new order's priority and
// quantity (spec.md §9 Open Question 1: the reference's overwrite
// behavior is kept here deliberately rather than guessed at — see
// DESIGN.md).
func (m *Manager) Add(u Update) {
	if loc, ok := m.index[u.OrderID]; ok && (loc.price != u.Price || loc.side != u.Side) {
		// The duplicate rests at another price or side: remove it there
		// first so its old contribution is not counted twice.
		m.Delete(u.OrderID)
	}

	container := m.side(u.Side)
	level, found := container.TryGet(u.Price)
	if !found {
		level = newLevel(u.Price, u.Side)
		container.Put(u.Price, level)
	}

	if old, dup := level.orders[u.OrderID]; dup {
		// Overwrite: undo the old contribution before adding the new one
		// so totalQuantity stays exact (see Open Question 1 in DESIGN.md).
		level.totalQuantity -= old.Quantity
		level.orderCount--
	}

	level.orders[u.OrderID] = Order{OrderID: u.OrderID, Quantity: u.Quantity, Priority: u.Priority, IsOwnOrder: u.IsOwn}
	level.totalQuantity += u.Quantity
	level.orderCount++
	level.arrayDirty = true
	m.markDirty(u.Side)

	m.index[u.OrderID] = location{price: u.Price, side: u.Side}
	m.book.UpdateLevel(u.Price, level.totalQuantity, level.orderCount, u.Side)
}

// Modify implements spec.md §4.4's Modify algorithm. An unknown orderId
// is silently ignored (spec.md §7: not an error, preserves resilience to
// out-of-order feed replays).
func (m *Manager) Modify(u Update) {
	loc, ok := m.index[u.OrderID]
	if !ok {
		return
	}
	level, found := m.side(loc.side).TryGet(loc.price)
	if !found {
		// Corruption indicator (spec.md §7): the index pointed at a price
		// with no backing level. Drop the dangling index entry and move
		// on silently; logging is the host's discretion.
		delete(m.index, u.OrderID)
		return
	}

	old, exists := level.orders[u.OrderID]
	if !exists {
		delete(m.index, u.OrderID)
		return
	}

	delta := int64(u.Quantity) - int64(old.Quantity)
	level.totalQuantity = uint64(int64(level.totalQuantity) + delta)
	level.orders[u.OrderID] = Order{
		OrderID:    u.OrderID,
		Quantity:   u.Quantity,
		Priority:   old.Priority,
		IsOwnOrder: old.IsOwnOrder,
	}
	level.arrayDirty = true
	m.markDirty(loc.side)

	m.book.UpdateLevel(loc.price, level.totalQuantity, level.orderCount, loc.side)
}

// Delete implements spec.md §4.4's Delete algorithm. An unknown orderId
// is silently ignored.
func (m *Manager) Delete(orderID uint64) {
	loc, ok := m.index[orderID]
	if !ok {
		return
	}
	delete(m.index, orderID)

	container := m.side(loc.side)
	level, found := container.TryGet(loc.price)
	if !found {
		return
	}

	existing, exists := level.orders[orderID]
	if !exists {
		return
	}

	level.totalQuantity -= existing.Quantity
	level.orderCount--
	delete(level.orders, orderID)
	level.arrayDirty = true
	m.markDirty(loc.side)

	if level.orderCount == 0 {
		container.Remove(loc.price)
		m.book.UpdateLevel(loc.price, 0, 0, loc.side)
		return
	}
	m.book.UpdateLevel(loc.price, level.totalQuantity, level.orderCount, loc.side)
}

// BidLevels returns the per-price ascending bid OrderLevels currently
// resting.
func (m *Manager) BidLevels() []*Level { return m.bids.Values() }

// AskLevels returns the per-price ascending ask OrderLevels currently
// resting.
func (m *Manager) AskLevels() []*Level { return m.asks.Values() }

// RenderBidOrders rebuilds (if dirty) and returns the cached price ->
// ordered-orders map for the bid side, keyed by the price's tick-precise
// decimal string (spec.md §6: "formatted to tick precision to avoid
// float key collisions").
func (m *Manager) RenderBidOrders() map[string][]Order {
	return m.renderSide(pricing.Bid)
}

// RenderAskOrders is RenderBidOrders for the ask side.
func (m *Manager) RenderAskOrders() map[string][]Order {
	return m.renderSide(pricing.Ask)
}

func (m *Manager) renderSide(side pricing.Side) map[string][]Order {
	dirty := m.bidsArraysDirty
	cache := m.cachedBidPrices
	if side == pricing.Ask {
		dirty = m.asksArraysDirty
		cache = m.cachedAskPrices
	}
	if !dirty && cache != nil {
		return cache
	}

	container := m.side(side)
	out := make(map[string][]Order, container.Count())
	for _, level := range container.Values() {
		out[level.Price.FormatTick(m.book.TickSize())] = level.Orders()
	}

	if side == pricing.Bid {
		m.cachedBidPrices = out
		m.bidsArraysDirty = false
	} else {
		m.cachedAskPrices = out
		m.asksArraysDirty = false
	}
	return out
}

// Reset clears all OrderLevels, the index, cached maps, and the backing
// Order Book (spec.md §4.4).
func (m *Manager) Reset() {
	m.bids.Clear()
	m.asks.Clear()
	m.index = make(map[uint64]location)
	m.cachedBidPrices = nil
	m.cachedAskPrices = nil
	m.bidsArraysDirty = false
	m.asksArraysDirty = false
	m.book.Clear()
}
