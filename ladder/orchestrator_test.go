package ladder_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladder-core/batcher"
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/ladder"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
)

func newTestOrchestrator(t *testing.T) *ladder.Orchestrator {
	t.Helper()
	ts := pricing.MustTickSize("0.01")
	o, err := ladder.New(ladder.Config{
		Book:    book.Config{TickSize: ts, MaxLevels: 200},
		Batcher: batcher.Config{MaxBatchSize: 1000},
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return o
}

func px(f float64) pricing.Price {
	return pricing.FromFloat64(f, pricing.MustTickSize("0.01"))
}

func TestProcessPriceLevelUpdateRejectedInMBOMode(t *testing.T) {
	o := newTestOrchestrator(t)
	o.SetDataMode(ladder.MBOMode)

	_, err := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(100), Quantity: 1, NumOrders: 1})
	assert.ErrorIs(t, err, ladder.ErrModeViolation)
}

func TestProcessOrderUpdateRejectedInPriceLevelMode(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.ProcessOrderUpdate(mbo.Update{OrderID: 1, Quantity: 1}, mbo.Add)
	assert.ErrorIs(t, err, ladder.ErrModeViolation)
}

func TestBestBidAskAndSpreadAfterUpdates(t *testing.T) {
	o := newTestOrchestrator(t)

	ok, err := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(99.50), Quantity: 100, NumOrders: 1})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Ask, Price: px(100.00), Quantity: 100, NumOrders: 1})
	require.NoError(t, err)
	require.True(t, ok)

	o.Flush()

	bid, ok := o.GetBestBid()
	require.True(t, ok)
	assert.Equal(t, px(99.50), bid)

	ask, ok := o.GetBestAsk()
	require.True(t, ok)
	assert.Equal(t, px(100.00), ask)

	spread, ok := o.GetSpread()
	require.True(t, ok)
	assert.Equal(t, int64(50), spread)

	mid, ok := o.GetMidPrice()
	require.True(t, ok)
	assert.Equal(t, px(99.75), mid)
}

func TestSetDataModeEmitsEmptyStructuralSnapshot(t *testing.T) {
	o := newTestOrchestrator(t)

	ok, err := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(50), Quantity: 10, NumOrders: 1})
	require.NoError(t, err)
	require.True(t, ok)
	o.Flush()

	var received []snapshot.Snapshot
	o.Subscribe(func(s snapshot.Snapshot) { received = append(received, s) })

	o.SetDataMode(ladder.MBOMode)

	require.Len(t, received, 1)
	assert.True(t, received[0].StructuralChange)
	assert.Empty(t, received[0].Bids)

	_, ok = o.GetBestBid()
	assert.False(t, ok, "switching mode clears the book")
}

func TestSetDataModeNoOpWhenModeUnchanged(t *testing.T) {
	o := newTestOrchestrator(t)
	var calls int
	o.Subscribe(func(snapshot.Snapshot) { calls++ })

	o.SetDataMode(ladder.PriceLevelMode)
	assert.Equal(t, 0, calls)
}

func TestMBOModeRoundTripThroughOrchestrator(t *testing.T) {
	o := newTestOrchestrator(t)
	o.SetDataMode(ladder.MBOMode)

	ok, err := o.ProcessOrderUpdate(mbo.Update{OrderID: 7, Side: pricing.Bid, Price: px(10.00), Quantity: 5, Priority: 1}, mbo.Add)
	require.NoError(t, err)
	require.True(t, ok)

	o.Flush()

	bid, ok := o.GetBestBid()
	require.True(t, ok)
	assert.Equal(t, px(10.00), bid)
}

func TestResetClearsBookAndStatsButKeepsSubscribers(t *testing.T) {
	o := newTestOrchestrator(t)

	var calls int
	o.Subscribe(func(snapshot.Snapshot) { calls++ })

	ok, err := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(1.00), Quantity: 1, NumOrders: 1})
	require.NoError(t, err)
	require.True(t, ok)
	o.Flush()
	require.Equal(t, 1, calls)

	o.Reset()

	_, ok = o.GetBestBid()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), o.Metrics().TotalBatchesFlushed)

	ok, err = o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(2.00), Quantity: 1, NumOrders: 1})
	require.NoError(t, err)
	require.True(t, ok)
	o.Flush()
	assert.Equal(t, 2, calls, "subscriber registered before Reset must still fire afterward")
}

func TestTopBidsReturnsHighestAscending(t *testing.T) {
	o := newTestOrchestrator(t)
	for _, f := range []float64{10, 11, 12} {
		ok, err := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{Side: pricing.Bid, Price: px(f), Quantity: 1, NumOrders: 1})
		require.NoError(t, err)
		require.True(t, ok)
	}
	o.Flush()

	top := o.TopBids(2)
	require.Len(t, top, 2)
	assert.Equal(t, px(11), top[0].Price)
	assert.Equal(t, px(12), top[1].Price)
}
