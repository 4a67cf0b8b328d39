package mbo

import (
	"sort"

	"github.com/saiputravu/ladder-core/pricing"
)

// Level is the OrderLevel entity from spec.md §3: per-price order set
// keyed uniquely by orderId, with cached aggregate quantity and count.
// orderCount == 0 implies the Level has been removed from its side
// container — Manager enforces this, Level itself is just storage.
type Level struct {
	Price         pricing.Price
	Side          pricing.Side
	orders        map[uint64]Order
	totalQuantity uint64
	orderCount    uint32
	arrayDirty    bool
	cachedOrders  []Order // lazily rebuilt from orders when arrayDirty
}

func newLevel(price pricing.Price, side pricing.Side) *Level {
	return &Level{
		Price:  price,
		Side:   side,
		orders: make(map[uint64]Order),
	}
}

// TotalQuantity returns the cached sum of all resting order quantities.
func (l *Level) TotalQuantity() uint64 { return l.totalQuantity }

// OrderCount returns the cached count of resting orders.
func (l *Level) OrderCount() uint32 { return l.orderCount }

// Orders returns the per-price ordered sequence of orders, ordered by
// orderId ascending (spec.md §4.7: "priority ordering is a consumer
// concern"). The slice is rebuilt lazily, only when arrayDirty is set,
// and the rebuild never touches the Manager's other state, so it never
// needs to hold any lock beyond whatever the caller already holds on the
// single cooperative thread.
func (l *Level) Orders() []Order {
	if !l.arrayDirty && l.cachedOrders != nil {
		return l.cachedOrders
	}
	out := make([]Order, 0, len(l.orders))
	for _, o := range l.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	l.cachedOrders = out
	l.arrayDirty = false
	return l.cachedOrders
}
