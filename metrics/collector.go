// Package metrics wraps a Batcher's intrinsic statistics (spec.md §4.5's
// metrics() contract) as a prometheus.Collector. The core itself never
// registers anything; a host constructs a Collector and registers it
// with its own prometheus.Registerer, matching spec.md §6's "the core
// does not own ... on-disk state" boundary extended to metrics exposure.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saiputravu/ladder-core/batcher"
)

// StatsSource is the subset of *batcher.Batcher (or *ladder.Orchestrator)
// the collector needs. Defined as an interface so this package never
// imports ladder, keeping the dependency direction one-way.
type StatsSource interface {
	Metrics() batcher.Stats
}

// Collector is a prometheus.Collector over one ladder instance's
// Batcher statistics. Construct one per instrument/instance and label
// it at registration time via prometheus.WrapRegistererWith if a host
// runs more than one.
type Collector struct {
	source StatsSource

	updatesProcessed *prometheus.Desc
	batchesFlushed   *prometheus.Desc
	averageBatchSize *prometheus.Desc
	pending          *prometheus.Desc
	queueUtilization *prometheus.Desc
}

// NewCollector constructs a Collector reading from source on every scrape.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source:           source,
		updatesProcessed: prometheus.NewDesc("ladder_updates_processed_total", "Total updates drained from the batcher's queues.", nil, nil),
		batchesFlushed:   prometheus.NewDesc("ladder_batches_flushed_total", "Total snapshot-producing flushes.", nil, nil),
		averageBatchSize: prometheus.NewDesc("ladder_average_batch_size", "Average number of updates per flush.", nil, nil),
		pending:          prometheus.NewDesc("ladder_pending_updates", "Updates queued but not yet flushed.", nil, nil),
		queueUtilization: prometheus.NewDesc("ladder_queue_utilization", "Fraction of the active queue's capacity currently occupied.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.updatesProcessed
	ch <- c.batchesFlushed
	ch <- c.averageBatchSize
	ch <- c.pending
	ch <- c.queueUtilization
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Metrics()
	ch <- prometheus.MustNewConstMetric(c.updatesProcessed, prometheus.CounterValue, float64(s.TotalUpdatesProcessed))
	ch <- prometheus.MustNewConstMetric(c.batchesFlushed, prometheus.CounterValue, float64(s.TotalBatchesFlushed))
	ch <- prometheus.MustNewConstMetric(c.averageBatchSize, prometheus.GaugeValue, s.AverageBatchSize)
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.queueUtilization, prometheus.GaugeValue, s.QueueUtilization)
}
