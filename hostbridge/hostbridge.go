// Package hostbridge implements Component H (spec.md §3, §6): the thin
// boundary contract external hosts use to drive the core and receive
// snapshots, plus two optional conveniences — a supervised flush loop
// for sparse producer arrival (spec.md §5: "a host may choose to call
// flush on a dedicated loop if producer arrivals are sparse") and an
// ingestion-side rate limiter for hosts that want to shed load before it
// ever reaches the Batcher's own queue-full backpressure.
package hostbridge

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gopkg.in/tomb.v2"

	"github.com/saiputravu/ladder-core/snapshot"
)

// Flusher is the subset of *ladder.Orchestrator the flush loop needs.
// Defined as an interface here, rather than importing ladder directly,
// so hostbridge stays a leaf package any host adapter can depend on
// without pulling in the orchestrator's own dependency surface.
type Flusher interface {
	Flush()
}

// SnapshotSubscriber is the contract a host adapter implements to
// receive flush events (spec.md §6: "a handler receives an
// OrderBookSnapshot value per flush").
type SnapshotSubscriber interface {
	OnSnapshot(snapshot.Snapshot)
}

// SnapshotSubscriberFunc adapts a plain function to SnapshotSubscriber.
type SnapshotSubscriberFunc func(snapshot.Snapshot)

// OnSnapshot implements SnapshotSubscriber.
func (f SnapshotSubscriberFunc) OnSnapshot(s snapshot.Snapshot) { f(s) }

// Engine is the minimal surface a host adapter needs to drive the core
// without depending on the ladder package's concrete type: a flush
// entry point plus the subscription hook. It has no enqueue methods;
// hosts that enqueue updates call the concrete type's Process* methods,
// and wire their own transport/codec in front of those.
type Engine interface {
	Flush()
	Subscribe(handler func(snapshot.Snapshot))
}

// Subscribe wraps Engine.Subscribe with a generated correlation ID. The
// snapshot subscription contract itself carries no identity (spec.md
// §6), but a host fanning one core out to several downstream consumers
// (a websocket hub, a metrics tap, a recorder) needs something to tag
// its own per-subscriber logs with; this mints that ID rather than
// leaving every host to invent its own.
func Subscribe(e Engine, handler func(snapshot.Snapshot)) string {
	id := uuid.NewString()
	e.Subscribe(handler)
	return id
}

// FlushLoop drives Flush on a fixed interval for hosts whose producer
// arrivals are too sparse to rely on size/time-threshold auto-flush
// (spec.md §5). It is supervised by a tomb.Tomb so a host can Kill it
// and Wait for clean shutdown the same way it would any other
// long-lived goroutine in this codebase.
type FlushLoop struct {
	t        tomb.Tomb
	interval time.Duration
	target   Flusher
}

// NewFlushLoop constructs a FlushLoop that calls target.Flush() every
// interval once Start is called.
func NewFlushLoop(target Flusher, interval time.Duration) *FlushLoop {
	return &FlushLoop{interval: interval, target: target}
}

// Start launches the loop goroutine. Safe to call once.
func (l *FlushLoop) Start() {
	l.t.Go(l.run)
}

func (l *FlushLoop) run() error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.target.Flush()
		case <-l.t.Dying():
			return nil
		}
	}
}

// Stop kills the loop and blocks until it has exited.
func (l *FlushLoop) Stop() error {
	l.t.Kill(nil)
	return l.t.Wait()
}

// RateLimiter wraps golang.org/x/time/rate to let a host shed excess
// producer load before it reaches the Batcher's own queue-full
// flush-and-retry backpressure (spec.md §7's backpressure note: "hosts
// are expected to apply upstream throttling or drop policy").
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter constructs a RateLimiter allowing ratePerSecond steady
// throughput with the given burst allowance.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether a single update may proceed right now, without
// blocking. Hosts call this before handing an update to the core.
func (r *RateLimiter) Allow() bool { return r.limiter.Allow() }

// SetLimit adjusts the steady-state rate at runtime.
func (r *RateLimiter) SetLimit(ratePerSecond float64) {
	r.limiter.SetLimit(rate.Limit(ratePerSecond))
}
