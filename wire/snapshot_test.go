package wire_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
	"github.com/saiputravu/ladder-core/wire"
)

func TestFromSnapshotEmitsIntegerSideAndSignedQuantity(t *testing.T) {
	ts := pricing.MustTickSize("0.01")
	s := snapshot.Snapshot{
		Bids: []book.Level{{Price: pricing.FromFloat64(10.00, ts), Quantity: 5, NumOrders: 1, Side: pricing.Bid}},
		Asks: []book.Level{{Price: pricing.FromFloat64(11.00, ts), Quantity: 7, NumOrders: 2, Side: pricing.Ask}},
		DirtyChanges: []book.DirtyChange{
			{Price: pricing.FromFloat64(10.00, ts), Side: pricing.Bid, IsAddition: true},
			{Price: pricing.FromFloat64(11.00, ts), Side: pricing.Ask, IsAddition: true},
		},
	}

	w := wire.FromSnapshot(s, ts)
	require.Len(t, w.Bids, 1)
	require.Len(t, w.Asks, 1)
	assert.Equal(t, pricing.Bid, w.Bids[0].Side)
	assert.Equal(t, pricing.Ask, w.Asks[0].Side)
	assert.Equal(t, int64(5), w.Bids[0].Quantity)

	require.Len(t, w.DirtyChanges, 2)
	assert.Equal(t, pricing.Bid, w.DirtyChanges[0].Side)
	assert.Equal(t, pricing.Ask, w.DirtyChanges[1].Side)

	b, err := json.Marshal(w)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))

	bids := decoded["bids"].([]any)
	require.Len(t, bids, 1)
	bidObj := bids[0].(map[string]any)
	assert.Equal(t, float64(0), bidObj["side"], "side must serialize as the 0|1 integer variant, not a string")
	assert.Equal(t, float64(5), bidObj["quantity"])

	asks := decoded["asks"].([]any)
	askObj := asks[0].(map[string]any)
	assert.Equal(t, float64(1), askObj["side"])

	changes := decoded["dirtyChanges"].([]any)
	require.Len(t, changes, 2)
	assert.Equal(t, float64(0), changes[0].(map[string]any)["side"])
	assert.Equal(t, float64(1), changes[1].(map[string]any)["side"])
}
