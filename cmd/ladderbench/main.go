// Command ladderbench replays a recorded stream of binary update frames
// (spec.md §6's PriceLevel wire form) through the ladder core from a
// file and logs snapshot cadence as it drains. It is a replay tool, not
// a synthesizer: it never invents update data of its own (spec.md
// Non-goals exclude demo synthesizers).
package main

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/saiputravu/ladder-core/batcher"
	"github.com/saiputravu/ladder-core/book"
	"github.com/saiputravu/ladder-core/ladder"
	"github.com/saiputravu/ladder-core/pricing"
	"github.com/saiputravu/ladder-core/snapshot"
	"github.com/saiputravu/ladder-core/wire"
)

func main() {
	path := flag.String("frames", "", "path to a file of back-to-back 17-byte PriceLevel update frames (compulsory)")
	tick := flag.String("tick", "0.01", "instrument tick size")
	maxLevels := flag.Int("max-levels", 200, "preallocated level headroom per side")
	batchSize := flag.Int("batch-size", batcher.DefaultMaxBatchSize, "max updates per batch before auto-flush")
	verbose := flag.Bool("verbose", false, "log every flushed snapshot's top of book")
	flag.Parse()

	runID := uuid.NewString()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Str("run_id", runID).Logger()

	if *path == "" {
		log.Fatal().Msg("ladderbench: -frames is compulsory")
	}

	d, err := decimal.NewFromString(*tick)
	if err != nil {
		log.Fatal().Err(err).Msg("ladderbench: invalid -tick")
	}
	ts, err := pricing.NewTickSize(d)
	if err != nil {
		log.Fatal().Err(err).Msg("ladderbench: invalid -tick")
	}

	o, err := ladder.New(ladder.Config{
		Book:    book.Config{TickSize: ts, MaxLevels: *maxLevels},
		Batcher: batcher.Config{MaxBatchSize: *batchSize},
		Logger:  log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("ladderbench: failed to construct orchestrator")
	}

	var flushCount int
	o.Subscribe(func(s snapshot.Snapshot) {
		flushCount++
		if !*verbose {
			return
		}
		event := log.Info().Int("flush_seq", flushCount).Bool("structural", s.StructuralChange)
		if s.BestBid != nil {
			event = event.Float64("best_bid", *s.BestBid)
		}
		if s.BestAsk != nil {
			event = event.Float64("best_ask", *s.BestAsk)
		}
		event.Msg("ladderbench: snapshot flushed")
	})

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("ladderbench: failed to open frames file")
	}
	defer f.Close()

	applied, elapsed := replay(o, f, ts)

	m := o.Metrics()
	log.Info().
		Int("frames_applied", applied).
		Dur("elapsed", elapsed).
		Uint64("batches_flushed", m.TotalBatchesFlushed).
		Float64("avg_batch_size", m.AverageBatchSize).
		Msg("ladderbench: replay complete")
}

// replay reads back-to-back fixed-size PriceLevel frames from r and
// feeds each into o, discarding any short trailing frame (spec.md §7:
// "malformed binary frame ... silently discarded; the core does not
// partially apply").
func replay(o *ladder.Orchestrator, r io.Reader, ts pricing.TickSize) (int, time.Duration) {
	start := time.Now()
	applied := 0
	frame := make([]byte, wire.PriceLevelFrameSize)

	for {
		_, err := io.ReadFull(r, frame)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("ladderbench: read error, stopping replay")
			break
		}

		decoded, err := wire.DecodePriceLevelFrame(frame)
		if err != nil {
			continue
		}

		ok, procErr := o.ProcessPriceLevelUpdate(batcher.PriceLevelUpdate{
			Side:      decoded.Side,
			Price:     decoded.ToPrice(ts),
			Quantity:  decoded.ClampedQuantity(log.Logger),
			NumOrders: uint32(decoded.NumOrders),
		})
		if procErr != nil {
			log.Error().Err(procErr).Msg("ladderbench: mode violation during replay")
			continue
		}
		if ok {
			applied++
		}
	}

	o.Flush()
	return applied, time.Since(start)
}
