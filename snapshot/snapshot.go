// Package snapshot implements the Snapshot Assembler (spec.md §4.7): it
// builds the immutable OrderBookSnapshot value handed to subscribers.
// Snapshots are produced by value: book levels are copied, so nothing
// aliases the book's storage. The MBO order maps are the manager's own
// cached maps, shared with the manager rather than copied; the manager
// builds a new map when the orders change instead of editing an old one.
package snapshot

import (
	"time"

	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/mbo"
)

// Snapshot is the OrderBookSnapshot entity from spec.md §3.
type Snapshot struct {
	BestBid  *float64
	BestAsk  *float64
	MidPrice *float64

	Bids []book.Level
	Asks []book.Level

	BidOrders map[string][]mbo.Order
	AskOrders map[string][]mbo.Order

	DirtyChanges     []book.DirtyChange
	StructuralChange bool

	// Timestamp is a monotonic wall-clock reading taken at flush time
	// (spec.md §4.7); its unit is implementation-defined but stable, per
	// the wire schema note in spec.md §6. time.Now().UnixNano() satisfies
	// both: monotonically non-decreasing in practice on one host and
	// directly comparable across snapshots.
	Timestamp int64
}

// Assemble builds a Snapshot from an Order Book window, the book's own
// top-of-book, and (in MBO mode) the MBO Manager's rendered order maps.
// The caller is responsible for having already called
// OrderBook.ConsumeDirtyState and OrderBook.ClearDirtyFlags around this
// call, per spec.md §4.5's flush sequencing; Assemble itself never
// mutates the book or the manager's orders, though rendering the order
// maps may rebuild the manager's cached maps.
func Assemble(b *book.OrderBook, window book.Window, dirty []book.DirtyChange, structural bool, manager *mbo.Manager) Snapshot {
	ts := b.TickSize()

	s := Snapshot{
		Bids:             levelValues(window.Bids),
		Asks:             levelValues(window.Asks),
		DirtyChanges:     dirty,
		StructuralChange: structural,
		Timestamp:        time.Now().UnixNano(),
	}

	if bid, ok := b.BestBid(); ok {
		f := bid.Float64(ts)
		s.BestBid = &f
	}
	if ask, ok := b.BestAsk(); ok {
		f := ask.Float64(ts)
		s.BestAsk = &f
	}
	if s.BestBid != nil && s.BestAsk != nil {
		mid := (*s.BestBid + *s.BestAsk) / 2
		s.MidPrice = &mid
	}

	if manager != nil {
		s.BidOrders = manager.RenderBidOrders()
		s.AskOrders = manager.RenderAskOrders()
	}

	return s
}

// levelValues copies pointer-to-Level slices into a value slice so the
// snapshot never aliases the book's live storage (spec.md §6: "Snapshots
// are immutable and must not be retained past the next flush by
// reference to internal buffers").
func levelValues(levels []*book.Level) []book.Level {
	if len(levels) == 0 {
		return nil
	}
	out := make([]book.Level, len(levels))
	for i, l := range levels {
		out[i] = *l
	}
	return out
}

// EmptyStructural returns a zero-depth snapshot with StructuralChange
// forced true, used by the Orchestrator immediately after a mode switch
// (spec.md §4.6: "the first snapshot is empty and must carry
// structuralChange = true").
func EmptyStructural() Snapshot {
	return Snapshot{StructuralChange: true, Timestamp: time.Now().UnixNano()}
}
