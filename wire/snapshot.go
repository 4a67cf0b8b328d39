// Package wire implements the external interface concretizations from
// spec.md §6: the JSON structural schema a host serializes an
// OrderBookSnapshot to, and the two binary update-frame codecs feed
// adapters decode off the network before calling into the core.
package wire

import (
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
)

// Level is the wire-tagged projection of a book.Level. Side is emitted as
// spec.md §6's integer variant (0 = Bid, 1 = Ask), and Quantity as a
// signed i64, matching the schema exactly.
type Level struct {
	Price        float64      `json:"price"`
	Quantity     int64        `json:"quantity"`
	NumOrders    uint32       `json:"numOrders"`
	Side         pricing.Side `json:"side"`
	HasOwnOrders bool         `json:"hasOwnOrders"`
}

// Order is the wire-tagged projection of an mbo.Order.
type Order struct {
	OrderID    uint64 `json:"orderId"`
	Quantity   uint64 `json:"quantity"`
	Priority   uint64 `json:"priority"`
	IsOwnOrder bool   `json:"isOwnOrder"`
}

// DirtyChange is the wire-tagged projection of a book.DirtyChange. Side
// is the same 0|1 integer variant as Level.Side (spec.md §6).
type DirtyChange struct {
	Price      float64      `json:"price"`
	Side       pricing.Side `json:"side"`
	IsRemoval  bool         `json:"isRemoval"`
	IsAddition bool         `json:"isAddition"`
}

// Snapshot mirrors spec.md §6's field table exactly: bestBid/bestAsk/
// midPrice are nullable (absent on an empty side), bidOrders/askOrders
// are only populated in MBO mode, and timestamp is a monotonic-in-
// practice nanosecond reading taken at flush time.
type Snapshot struct {
	BestBid  *float64 `json:"bestBid"`
	BestAsk  *float64 `json:"bestAsk"`
	MidPrice *float64 `json:"midPrice"`

	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`

	BidOrders map[string][]Order `json:"bidOrders,omitempty"`
	AskOrders map[string][]Order `json:"askOrders,omitempty"`

	DirtyChanges     []DirtyChange `json:"dirtyChanges"`
	StructuralChange bool          `json:"structuralChange"`
	Timestamp        int64         `json:"timestamp"`
}

// FromSnapshot projects a snapshot.Snapshot into its wire-tagged JSON
// form. ts is the instrument's tick size, needed to render the book's
// tick-indexed level prices as wire floats (spec.md §6).
func FromSnapshot(s snapshot.Snapshot, ts pricing.TickSize) Snapshot {
	return Snapshot{
		BestBid:          s.BestBid,
		BestAsk:          s.BestAsk,
		MidPrice:         s.MidPrice,
		Bids:             wireLevels(s.Bids, ts),
		Asks:             wireLevels(s.Asks, ts),
		BidOrders:        wireOrderMap(s.BidOrders),
		AskOrders:        wireOrderMap(s.AskOrders),
		DirtyChanges:     wireDirtyChanges(s.DirtyChanges, ts),
		StructuralChange: s.StructuralChange,
		Timestamp:        s.Timestamp,
	}
}

func wireLevels(levels []book.Level, ts pricing.TickSize) []Level {
	if len(levels) == 0 {
		return nil
	}
	out := make([]Level, len(levels))
	for i, l := range levels {
		out[i] = Level{
			Price:        l.Price.Float64(ts),
			Quantity:     int64(l.Quantity),
			NumOrders:    l.NumOrders,
			Side:         l.Side,
			HasOwnOrders: l.HasOwnOrders,
		}
	}
	return out
}

func wireOrderMap(m map[string][]mbo.Order) map[string][]Order {
	if m == nil {
		return nil
	}
	out := make(map[string][]Order, len(m))
	for price, orders := range m {
		wo := make([]Order, len(orders))
		for i, o := range orders {
			wo[i] = Order{OrderID: o.OrderID, Quantity: o.Quantity, Priority: o.Priority, IsOwnOrder: o.IsOwnOrder}
		}
		out[price] = wo
	}
	return out
}

func wireDirtyChanges(changes []book.DirtyChange, ts pricing.TickSize) []DirtyChange {
	if len(changes) == 0 {
		return nil
	}
	out := make([]DirtyChange, len(changes))
	for i, c := range changes {
		out[i] = DirtyChange{
			Price:      c.Price.Float64(ts),
			Side:       c.Side,
			IsRemoval:  c.IsRemoval,
			IsAddition: c.IsAddition,
		}
	}
	return out
}
