// Package ladder implements the Ladder Orchestrator (spec.md §4.6): the
// mode state machine and lifecycle owner that hosts construct and drive.
// It is the single entry point spec.md §9's Design Notes call for:
// "prefer an explicit handle passed into every entry point; hosts that
// need a singleton wrap one externally" — there is no package-level
// mutable engine state anywhere in this module.
package ladder

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/saiputravu/ladder-core/batcher"
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/hostbridge"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
)

// var assertion: *Orchestrator is the concrete type hosts pass wherever
// hostbridge.Engine is expected.
var _ hostbridge.Engine = (*Orchestrator)(nil)

// Mode mirrors batcher.DataMode at the orchestrator boundary so callers
// of this package never need to import batcher directly.
type Mode = batcher.DataMode

const (
	PriceLevelMode = batcher.PriceLevelMode
	MBOMode        = batcher.MBOMode
)

// ErrModeViolation is returned when a price-level operation is invoked
// while in MBO mode, or vice versa (spec.md §7).
var ErrModeViolation = errors.New("ladder: operation does not match current mode")

// Config configures the Orchestrator's owned Order Book and Batcher.
type Config struct {
	Book    book.Config
	Batcher batcher.Config
	Logger  zerolog.Logger
}

// Orchestrator owns the Order Book, the Batcher, and (in MBO mode) the
// MBO Manager. It is the handle a host constructs once and threads
// through every call into the core.
type Orchestrator struct {
	log zerolog.Logger

	mode    Mode
	book    *book.OrderBook
	batcher *batcher.Batcher
	manager *mbo.Manager

	bookCfg book.Config
}

// New constructs an Orchestrator starting in PriceLevelMode.
func New(cfg Config) (*Orchestrator, error) {
	b := book.New(cfg.Book)
	bat, err := batcher.New(b, cfg.Batcher, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		log:     cfg.Logger,
		mode:    PriceLevelMode,
		book:    b,
		batcher: bat,
		bookCfg: cfg.Book,
	}, nil
}

// Mode returns the current data mode.
func (o *Orchestrator) Mode() Mode { return o.mode }

// ProcessPriceLevelUpdate delegates to the Batcher after asserting the
// orchestrator is in PriceLevelMode (spec.md §4.6).
func (o *Orchestrator) ProcessPriceLevelUpdate(u batcher.PriceLevelUpdate) (bool, error) {
	if o.mode != PriceLevelMode {
		return false, ErrModeViolation
	}
	return o.batcher.QueueUpdate(u), nil
}

// ProcessOrderUpdate delegates to the Batcher after asserting the
// orchestrator is in MBOMode.
func (o *Orchestrator) ProcessOrderUpdate(u mbo.Update, typ mbo.UpdateType) (bool, error) {
	if o.mode != MBOMode {
		return false, ErrModeViolation
	}
	return o.batcher.QueueOrderUpdate(u, typ), nil
}

// ProcessBatch queues a span of PriceLevel updates in order, stopping at
// the first rejection, and returns the count enqueued.
func (o *Orchestrator) ProcessBatch(updates []batcher.PriceLevelUpdate) (int, error) {
	if o.mode != PriceLevelMode {
		return 0, ErrModeViolation
	}
	return o.batcher.QueueBatch(updates), nil
}

// Flush forces an immediate flush of the active batcher.
func (o *Orchestrator) Flush() { o.batcher.Flush() }

// MarkOwnOrder forwards to the Order Book directly; marking own-order
// status is not subject to the batching window in either mode.
func (o *Orchestrator) MarkOwnOrder(price pricing.Price, side pricing.Side, has bool) {
	o.book.MarkOwnOrder(price, side, has)
}

// GetBestBid returns the current best bid, if any.
func (o *Orchestrator) GetBestBid() (pricing.Price, bool) { return o.book.BestBid() }

// GetBestAsk returns the current best ask, if any.
func (o *Orchestrator) GetBestAsk() (pricing.Price, bool) { return o.book.BestAsk() }

// GetMidPrice returns the arithmetic mean of best bid and best ask,
// truncated to a whole tick (pricing.Mid), or false if either side is
// empty.
func (o *Orchestrator) GetMidPrice() (pricing.Price, bool) {
	bid, okBid := o.book.BestBid()
	ask, okAsk := o.book.BestAsk()
	if !okBid || !okAsk {
		return pricing.Price{}, false
	}
	return pricing.Mid(bid, ask), true
}

// GetSpread returns askTicks - bidTicks, or false if either side is empty.
func (o *Orchestrator) GetSpread() (int64, bool) {
	bid, okBid := o.book.BestBid()
	ask, okAsk := o.book.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask.Ticks - bid.Ticks, true
}

// TopBids returns up to n of the highest bids.
func (o *Orchestrator) TopBids(n int) []*book.Level { return o.book.TopBids(n) }

// TopAsks returns up to n of the lowest asks.
func (o *Orchestrator) TopAsks(n int) []*book.Level { return o.book.TopAsks(n) }

// Subscribe forwards Batcher flush events to handler (spec.md §4.6). The
// parameter is the plain func type, not batcher.Subscriber, so
// *Orchestrator satisfies hostbridge.Engine without hostbridge needing
// to import batcher.
func (o *Orchestrator) Subscribe(handler func(snapshot.Snapshot)) {
	o.batcher.Subscribe(handler)
}

// SetDataMode switches the mode state machine. A no-op if mode is
// unchanged; otherwise pause -> clear book (and reset the MBO manager,
// if applicable) -> set mode -> resume, all on the calling goroutine so
// the transition is atomic from the caller's perspective (spec.md §4.6:
// "pause-clear-switch-resume is not interleaved with updates because
// this is a cooperative single-threaded engine"). The first snapshot
// after a switch is empty and carries structuralChange = true.
func (o *Orchestrator) SetDataMode(mode Mode) {
	if mode == o.mode {
		return
	}

	o.batcher.Pause()
	o.book.Clear()
	if o.manager != nil {
		o.manager.Reset()
	}
	if mode == MBOMode && o.manager == nil {
		o.manager = mbo.New(o.book)
	}
	o.mode = mode
	o.batcher.SetDataMode(mode, o.manager)
	o.batcher.Resume()

	o.emitEmptySnapshot()
}

func (o *Orchestrator) emitEmptySnapshot() {
	empty := snapshot.EmptyStructural()
	if o.mode == MBOMode && o.manager != nil {
		empty.BidOrders = o.manager.RenderBidOrders()
		empty.AskOrders = o.manager.RenderAskOrders()
	}
	o.batcher.EmitDirect(empty)
}

// Reset pauses, clears book and MBO state, resets statistics, and
// resumes, preserving registered subscribers (spec.md §4.6).
func (o *Orchestrator) Reset() {
	o.batcher.Pause()
	o.book.Clear()
	if o.manager != nil {
		o.manager.Reset()
	}
	o.batcher.ResetStatistics()
	o.batcher.Reset()
	o.batcher.Resume()
}

// Metrics returns the Batcher's intrinsic processing statistics.
func (o *Orchestrator) Metrics() batcher.Stats { return o.batcher.Metrics() }
