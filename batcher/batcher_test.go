package batcher_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladder-core/batcher"
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
)

func newTestBatcher(t *testing.T, cfg batcher.Config) (*batcher.Batcher, *book.OrderBook) {
	t.Helper()
	ts := pricing.MustTickSize("0.01")
	b := book.New(book.Config{TickSize: ts, MaxLevels: 200})
	bat, err := batcher.New(b, cfg, zerolog.Nop())
	require.NoError(t, err)
	return bat, b
}

func px(b *book.OrderBook, f float64) pricing.Price {
	return pricing.FromFloat64(f, b.TickSize())
}

func TestQueueUpdateNoFlushThenManualFlushEmitsOneSnapshot(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{MaxBatchSize: 1000})

	var received []snapshot.Snapshot
	bat.Subscribe(func(s snapshot.Snapshot) { received = append(received, s) })

	assert.True(t, bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 100.00), Quantity: 1000, NumOrders: 1}))
	assert.True(t, bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Ask, Price: px(b, 100.01), Quantity: 1500, NumOrders: 1}))

	bat.Flush()

	require.Len(t, received, 1)
	s := received[0]
	require.NotNil(t, s.BestBid)
	assert.InDelta(t, 100.00, *s.BestBid, 1e-9)
	require.NotNil(t, s.BestAsk)
	assert.InDelta(t, 100.01, *s.BestAsk, 1e-9)
	require.NotNil(t, s.MidPrice)
	assert.InDelta(t, 100.005, *s.MidPrice, 1e-9)
	assert.True(t, s.StructuralChange)
	assert.Len(t, s.DirtyChanges, 2)
}

func TestFlushOnEmptyPendingIsNoOp(t *testing.T) {
	bat, _ := newTestBatcher(t, batcher.Config{})
	var calls int
	bat.Subscribe(func(snapshot.Snapshot) { calls++ })
	bat.Flush()
	assert.Equal(t, 0, calls)
}

func TestMaxBatchSizeTriggersAutoFlush(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{MaxBatchSize: 2})
	var calls int
	bat.Subscribe(func(snapshot.Snapshot) { calls++ })

	bat.QueueUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 1.00), Quantity: 1, NumOrders: 1})
	assert.Equal(t, 0, calls)
	bat.QueueUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 2.00), Quantity: 1, NumOrders: 1})
	assert.Equal(t, 1, calls, "second enqueue should push pending to MaxBatchSize and auto-flush")
}

func TestPauseRejectsEnqueue(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{})
	bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 1.00), Quantity: 1, NumOrders: 1})

	bat.Pause()
	assert.False(t, bat.QueueUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 2.00), Quantity: 1, NumOrders: 1}))

	bat.Resume()
	assert.True(t, bat.QueueUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 2.00), Quantity: 1, NumOrders: 1}))
}

func TestOrderUpdateRejectedOutsideMBOMode(t *testing.T) {
	bat, _ := newTestBatcher(t, batcher.Config{})
	assert.False(t, bat.QueueOrderUpdate(mbo.Update{OrderID: 1, Quantity: 1}, mbo.Add))
}

func TestMBOModeFlushAttachesOrderMaps(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{})
	manager := mbo.New(b)
	bat.SetDataMode(batcher.MBOMode, manager)

	var received []snapshot.Snapshot
	bat.Subscribe(func(s snapshot.Snapshot) { received = append(received, s) })

	price := px(b, 50000.00)
	bat.QueueOrderUpdateNoFlush(mbo.Update{OrderID: 1, Side: pricing.Ask, Price: price, Quantity: 5, Priority: 1}, mbo.Add)
	bat.Flush()

	require.Len(t, received, 1)
	s := received[0]
	require.NotNil(t, s.AskOrders)
	orders, ok := s.AskOrders[price.FormatTick(b.TickSize())]
	require.True(t, ok)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(1), orders[0].OrderID)
}

func TestMetricsTracksProcessedAndFlushed(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{})
	bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 1.00), Quantity: 1, NumOrders: 1})
	bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 2.00), Quantity: 1, NumOrders: 1})
	bat.Flush()

	m := bat.Metrics()
	assert.Equal(t, uint64(2), m.TotalUpdatesProcessed)
	assert.Equal(t, uint64(1), m.TotalBatchesFlushed)
	assert.InDelta(t, 2.0, m.AverageBatchSize, 1e-9)
	assert.Equal(t, 0, m.Pending)
}

func TestQueueFullFlushesAndRetries(t *testing.T) {
	bat, b := newTestBatcher(t, batcher.Config{QueueCapacity: 4, MaxBatchSize: 1000})
	var calls int
	bat.Subscribe(func(snapshot.Snapshot) { calls++ })

	// Fill the 4-slot ring to capacity - 1 without letting the size/time
	// threshold fire.
	require.True(t, bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 1.00), Quantity: 1, NumOrders: 1}))
	require.True(t, bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 2.00), Quantity: 1, NumOrders: 1}))
	require.True(t, bat.QueueUpdateNoFlush(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 3.00), Quantity: 1, NumOrders: 1}))

	// This enqueue finds the ring full, flushes the prior three, and
	// succeeds on retry.
	require.True(t, bat.QueueUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(b, 4.00), Quantity: 1, NumOrders: 1}))
	assert.Equal(t, 1, calls, "exactly one flush should have occurred covering the first three updates")
}
