// Package batcher implements the Update Batcher (spec.md §4.5): a
// time/size-bounded coalescer that owns both SPSC queues and the flush
// timer, draining into the Order Book directly (aggregated mode) or via
// the MBO Manager (MBO mode), and emitting a Snapshot per flush.
package batcher

import (
	"time"

	"github.com/saiputravu/ladder-core/pricing"
)

// DataMode is the tagged variant the batcher drains into (spec.md §9
// Design Notes: "best expressed as a tagged variant ... rather than
// runtime polymorphism").
type DataMode uint8

const (
	PriceLevelMode DataMode = iota
	MBOMode
)

// Defaults from spec.md §4.5.
const (
	DefaultBatchInterval       = 100 * time.Microsecond
	DefaultMaxBatchSize        = 1000
	DefaultQueueCapacity       = 4096
	DefaultSnapshotVisibleLvls = 100
)

// Config configures a Batcher. A zero Config is filled in with the
// spec's defaults by New.
type Config struct {
	BatchInterval        time.Duration
	MaxBatchSize         int
	QueueCapacity        int // must be a power of two
	SnapshotVisibleLevels int
	FillEmptyLevels      bool

	// SnapshotCenterPrice, if non-nil, pins the snapshot center price
	// instead of deriving it from the book's mid/best (spec.md §4.5 step
	// 3).
	SnapshotCenterPrice *pricing.Price
}

func (c Config) withDefaults() Config {
	if c.BatchInterval <= 0 {
		c.BatchInterval = DefaultBatchInterval
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.SnapshotVisibleLevels <= 0 {
		c.SnapshotVisibleLevels = DefaultSnapshotVisibleLvls
	}
	return c
}

// Stats is the intrinsic metrics surface from spec.md §4.5's metrics()
// contract.
type Stats struct {
	TotalUpdatesProcessed uint64
	TotalBatchesFlushed   uint64
	AverageBatchSize      float64
	Pending               int
	QueueUtilization      float64
}
