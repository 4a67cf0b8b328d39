package batcher

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
	"github.com/saiputravu/ladder-core/spsc"
)

// ErrWrongMode names the mode-violation condition (spec.md §7) at the
// batcher level. Nothing returns it: the Batcher's own Queue* methods
// reject silently (returning false), matching spec.md §4.5's
// bool-returning contracts, and the Orchestrator reports a mode violation
// to its callers with its own ladder.ErrModeViolation.
var ErrWrongMode = errors.New("batcher: update type does not match current data mode")

// PriceLevelUpdate is the PriceLevel update entity from spec.md §3.
type PriceLevelUpdate struct {
	Side      pricing.Side
	Price     pricing.Price
	Quantity  uint64
	NumOrders uint32
}

// Subscriber receives one Snapshot per flush (spec.md §6).
type Subscriber func(snapshot.Snapshot)

// Batcher is the Update Batcher (spec.md §4.5). It owns both SPSC queues
// and the flush timer, and holds non-owning references to the Order Book
// and (in MBO mode) the MBO Manager.
type Batcher struct {
	cfg Config
	log zerolog.Logger

	book    *book.OrderBook
	manager *mbo.Manager
	mode    DataMode

	priceQueue *spsc.Queue[PriceLevelUpdate]
	orderQueue *spsc.Queue[orderQueueItem]

	pending      int
	lastFlush    time.Time
	paused       bool
	subscribers  []Subscriber

	stats Stats
}

type orderQueueItem struct {
	update mbo.Update
	typ    mbo.UpdateType
}

// New constructs a Batcher bound to b, draining into the Order Book in
// PriceLevelMode by default. A zero Config uses spec.md §4.5's defaults.
func New(b *book.OrderBook, cfg Config, logger zerolog.Logger) (*Batcher, error) {
	cfg = cfg.withDefaults()

	priceQueue, err := spsc.New[PriceLevelUpdate](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}
	orderQueue, err := spsc.New[orderQueueItem](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	return &Batcher{
		cfg:        cfg,
		log:        logger,
		book:       b,
		mode:       PriceLevelMode,
		priceQueue: priceQueue,
		orderQueue: orderQueue,
		lastFlush:  time.Now(),
	}, nil
}

// SetDataMode sets which downstream consumer the drain targets. manager
// may be nil when switching to PriceLevelMode.
func (b *Batcher) SetDataMode(mode DataMode, manager *mbo.Manager) {
	b.mode = mode
	b.manager = manager
}

// Subscribe registers handler to be invoked synchronously at the end of
// every Flush (spec.md §9 Design Notes: "this design chooses synchronous
// delivery").
func (b *Batcher) Subscribe(handler Subscriber) {
	b.subscribers = append(b.subscribers, handler)
}

// QueueUpdate enqueues a PriceLevel update, flushing (and retrying once)
// if the queue is full, and flushing once pending reaches MaxBatchSize or
// BatchInterval has elapsed (spec.md §4.5).
func (b *Batcher) QueueUpdate(u PriceLevelUpdate) bool {
	if b.paused {
		return false
	}
	if !b.enqueuePriceUpdate(u) {
		return false
	}
	b.maybeFlush()
	return true
}

// QueueUpdateNoFlush is QueueUpdate without the time/size-driven flush,
// for hosts that drive flush on their own loop (spec.md §4.5).
func (b *Batcher) QueueUpdateNoFlush(u PriceLevelUpdate) bool {
	if b.paused {
		return false
	}
	return b.enqueuePriceUpdate(u)
}

func (b *Batcher) enqueuePriceUpdate(u PriceLevelUpdate) bool {
	if b.priceQueue.TryWrite(u) {
		b.pending++
		return true
	}
	// Queue full: flush the current batch and retry once (spec.md §4.5,
	// §7: "the core flushes and retries once").
	b.Flush()
	if b.priceQueue.TryWrite(u) {
		b.pending++
		return true
	}
	b.log.Debug().Msg("batcher: queue full after retry, rejecting enqueue")
	return false
}

// QueueBatch calls QueueUpdate in order, stopping at the first rejection,
// and returns the number enqueued.
func (b *Batcher) QueueBatch(updates []PriceLevelUpdate) int {
	n := 0
	for _, u := range updates {
		if !b.QueueUpdate(u) {
			break
		}
		n++
	}
	return n
}

// QueueOrderUpdate enqueues an MBO OrderUpdate, rejected if the batcher
// is not in MBO mode.
func (b *Batcher) QueueOrderUpdate(u mbo.Update, typ mbo.UpdateType) bool {
	if b.paused {
		return false
	}
	if b.mode != MBOMode {
		return false
	}
	if !b.enqueueOrderUpdate(u, typ) {
		return false
	}
	b.maybeFlush()
	return true
}

// QueueOrderUpdateNoFlush is QueueOrderUpdate without the driven flush.
func (b *Batcher) QueueOrderUpdateNoFlush(u mbo.Update, typ mbo.UpdateType) bool {
	if b.paused || b.mode != MBOMode {
		return false
	}
	return b.enqueueOrderUpdate(u, typ)
}

func (b *Batcher) enqueueOrderUpdate(u mbo.Update, typ mbo.UpdateType) bool {
	item := orderQueueItem{update: u, typ: typ}
	if b.orderQueue.TryWrite(item) {
		b.pending++
		return true
	}
	b.Flush()
	if b.orderQueue.TryWrite(item) {
		b.pending++
		return true
	}
	b.log.Debug().Msg("batcher: order queue full after retry, rejecting enqueue")
	return false
}

func (b *Batcher) maybeFlush() {
	if b.pending >= b.cfg.MaxBatchSize || time.Since(b.lastFlush) >= b.cfg.BatchInterval {
		b.Flush()
	}
}

// Flush drains whichever queue the current mode targets into the book
// (directly, or via the MBO manager), assembles and emits one Snapshot,
// and resets the pending counter and flush timer (spec.md §4.5).
func (b *Batcher) Flush() {
	if b.pending == 0 {
		return
	}

	drained := b.drain()

	center := b.centerPrice()
	window := b.book.GetSnapshot(center, b.cfg.SnapshotVisibleLevels, b.cfg.FillEmptyLevels)
	dirty, structural := b.book.ConsumeDirtyState()

	var manager *mbo.Manager
	if b.mode == MBOMode {
		manager = b.manager
	}
	snap := snapshot.Assemble(b.book, window, dirty, structural, manager)

	b.book.ClearDirtyFlags()

	b.stats.TotalUpdatesProcessed += uint64(drained)
	b.stats.TotalBatchesFlushed++
	b.pending = 0
	b.lastFlush = time.Now()

	for _, sub := range b.subscribers {
		sub(snap)
	}
}

// drain pulls every queued item for the active mode and applies it,
// returning the count applied. Malformed updates never corrupt the book:
// the Order Book itself guards quantity >= 0 (uint64, so this is
// unconditional) and treats removal of an absent price as a plain no-op.
func (b *Batcher) drain() int {
	n := 0
	switch b.mode {
	case PriceLevelMode:
		for {
			u, ok := b.priceQueue.TryRead()
			if !ok {
				break
			}
			b.book.UpdateLevel(u.Price, u.Quantity, u.NumOrders, u.Side)
			n++
		}
	case MBOMode:
		for {
			item, ok := b.orderQueue.TryRead()
			if !ok {
				break
			}
			if b.manager != nil {
				b.manager.Process(item.update, item.typ)
			}
			n++
		}
	}
	return n
}

// centerPrice implements spec.md §4.5 step 3's fallback chain:
// configured SnapshotCenterPrice, else floor(midPrice/T)*T, else
// bestBid, else bestAsk, else the zero price.
func (b *Batcher) centerPrice() pricing.Price {
	if b.cfg.SnapshotCenterPrice != nil {
		return *b.cfg.SnapshotCenterPrice
	}

	bestBid, hasBid := b.book.BestBid()
	bestAsk, hasAsk := b.book.BestAsk()

	if hasBid && hasAsk {
		return pricing.Mid(bestBid, bestAsk)
	}
	if hasBid {
		return bestBid
	}
	if hasAsk {
		return bestAsk
	}
	return pricing.Price{}
}

// Pause flushes any remaining pending updates, then rejects subsequent
// enqueues until Resume is called (spec.md §4.5).
func (b *Batcher) Pause() {
	b.Flush()
	b.paused = true
}

// Resume re-enables enqueue and resets the flush timestamp.
func (b *Batcher) Resume() {
	b.paused = false
	b.lastFlush = time.Now()
}

// ResetStatistics zeroes the intrinsic counters without touching pending
// state or queues.
func (b *Batcher) ResetStatistics() {
	b.stats = Stats{}
}

// ClearPending clears the pending counter directly; safe only when no
// producer is active (spec.md §4.5).
func (b *Batcher) ClearPending() {
	b.pending = 0
}

// Metrics returns processed/flushed counts, average batch size, pending
// count, and queue utilization (spec.md §4.5).
func (b *Batcher) Metrics() Stats {
	s := b.stats
	s.Pending = b.pending
	if s.TotalBatchesFlushed > 0 {
		s.AverageBatchSize = float64(s.TotalUpdatesProcessed) / float64(s.TotalBatchesFlushed)
	}
	var cap int
	switch b.mode {
	case MBOMode:
		cap = b.orderQueue.Capacity()
	default:
		cap = b.priceQueue.Capacity()
	}
	if cap > 0 {
		s.QueueUtilization = float64(b.pending) / float64(cap)
	}
	return s
}

// EmitDirect invokes every subscriber with snap without draining a queue
// or touching pending/stats; used by the Orchestrator to deliver the
// synthetic empty snapshot immediately after a mode switch (spec.md
// §4.6), which carries no queued updates of its own.
func (b *Batcher) EmitDirect(snap snapshot.Snapshot) {
	for _, sub := range b.subscribers {
		sub(snap)
	}
}

// Reset drops queue contents and pending/flush state (used by the
// Orchestrator's mode switch and Reset; the queues themselves are only
// safe to Clear when no producer/consumer is active, which holds here
// because Reset runs on the same cooperative thread as the producer).
func (b *Batcher) Reset() {
	b.priceQueue.Clear()
	b.orderQueue.Clear()
	b.pending = 0
	b.lastFlush = time.Now()
}
