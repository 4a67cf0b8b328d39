package mbo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
)

func newTestManager(t *testing.T) (*mbo.Manager, *book.OrderBook) {
	t.Helper()
	ts := pricing.MustTickSize("0.01")
	b := book.New(book.Config{TickSize: ts, MaxLevels: 200})
	return mbo.New(b), b
}

func TestS4_AddModifyDeleteAggregatesToBook(t *testing.T) {
	m, b := newTestManager(t)
	price := pricing.FromFloat64(50000.00, b.TickSize())

	m.Add(mbo.Update{OrderID: 1, Side: pricing.Ask, Price: price, Quantity: 5, Priority: 1})
	m.Add(mbo.Update{OrderID: 2, Side: pricing.Ask, Price: price, Quantity: 3, Priority: 2})
	m.Modify(mbo.Update{OrderID: 1, Side: pricing.Ask, Price: price, Quantity: 8, Priority: 1})
	m.Delete(2)

	level, ok := b.TryGetLevel(price, pricing.Ask)
	require.True(t, ok)
	assert.Equal(t, uint64(8), level.Quantity)
	assert.Equal(t, uint32(1), level.NumOrders)

	askOrders := m.RenderAskOrders()
	key := price.FormatTick(b.TickSize())
	orders, ok := askOrders[key]
	require.True(t, ok)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(1), orders[0].OrderID)
	assert.Equal(t, uint64(8), orders[0].Quantity)
	assert.False(t, orders[0].IsOwnOrder)

	bidOrders := m.RenderBidOrders()
	assert.Empty(t, bidOrders)

	_, structural := b.ConsumeDirtyState()
	assert.True(t, structural)
}

func TestAddThenDeleteCancels(t *testing.T) {
	m, b := newTestManager(t)
	price := pricing.FromFloat64(10.00, b.TickSize())

	m.Add(mbo.Update{OrderID: 1, Side: pricing.Bid, Price: price, Quantity: 10, Priority: 1})
	m.Delete(1)

	_, ok := b.TryGetLevel(price, pricing.Bid)
	assert.False(t, ok)
	assert.Empty(t, m.BidLevels())

	_, structural := b.ConsumeDirtyState()
	assert.True(t, structural, "both the add and the cancelling delete are structural")
}

func TestModifyUnknownOrderIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	assert.NotPanics(t, func() {
		m.Modify(mbo.Update{OrderID: 999, Quantity: 5})
	})
}

func TestDeleteUnknownOrderIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	assert.NotPanics(t, func() { m.Delete(999) })
}

func TestDuplicateAddOverwrites(t *testing.T) {
	m, b := newTestManager(t)
	price := pricing.FromFloat64(1.00, b.TickSize())

	m.Add(mbo.Update{OrderID: 1, Side: pricing.Bid, Price: price, Quantity: 5, Priority: 1})
	m.Add(mbo.Update{OrderID: 1, Side: pricing.Bid, Price: price, Quantity: 9, Priority: 2})

	level, ok := b.TryGetLevel(price, pricing.Bid)
	require.True(t, ok)
	assert.Equal(t, uint64(9), level.Quantity)
	assert.Equal(t, uint32(1), level.NumOrders, "overwrite must not double-count the order")
}

func TestResetClearsEverything(t *testing.T) {
	m, b := newTestManager(t)
	price := pricing.FromFloat64(1.00, b.TickSize())
	m.Add(mbo.Update{OrderID: 1, Side: pricing.Bid, Price: price, Quantity: 5, Priority: 1})

	m.Reset()

	assert.Empty(t, m.BidLevels())
	assert.Empty(t, m.AskLevels())
	_, ok := b.TryGetLevel(price, pricing.Bid)
	assert.False(t, ok)
}
