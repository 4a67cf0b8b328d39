// Package pricing implements the fixed-point price representation used
// throughout the ladder core. Prices are stored internally as an integer
// count of ticks; decimal.Decimal and float64 are only touched at
// construction and serialization boundaries, so book and container code
// never accumulates floating point rounding error.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNonPositiveTickSize is returned by NewTickSize when T <= 0.
	ErrNonPositiveTickSize = errors.New("pricing: tick size must be > 0")

	// ErrNotATickMultiple is returned when a raw price is not, within the
	// tick size's own precision, an exact multiple of T. The ingestion
	// layer is responsible for rounding; the core only asserts.
	ErrNotATickMultiple = errors.New("pricing: price is not a multiple of the tick size")
)

// TickSize is the smallest price increment for an instrument (T in the
// spec). It wraps decimal.Decimal so hosts can configure it from a string
// ("0.01") without float parsing surprises.
type TickSize struct {
	d decimal.Decimal
}

// NewTickSize validates and wraps a tick size. T must be strictly positive.
func NewTickSize(t decimal.Decimal) (TickSize, error) {
	if t.Sign() <= 0 {
		return TickSize{}, ErrNonPositiveTickSize
	}
	return TickSize{d: t}, nil
}

// MustTickSize panics on an invalid tick size; intended for package-level
// construction in tests and demos where the tick size is a compile-time
// constant.
func MustTickSize(s string) TickSize {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("pricing: invalid tick size literal %q: %v", s, err))
	}
	ts, err := NewTickSize(d)
	if err != nil {
		panic(err)
	}
	return ts
}

// Decimal returns the underlying decimal value of the tick size.
func (t TickSize) Decimal() decimal.Decimal { return t.d }

// Price is a tick-indexed fixed-point price: Ticks * tickSize. Comparisons
// and arithmetic on Price values are plain int64 operations; only the
// conversions (FromDecimal, RoundToTick, FromFloat64, FloorToTick,
// Decimal, Float64, FormatTick) touch decimal.Decimal.
type Price struct {
	Ticks int64
}

// FromDecimal rounds d to the nearest tick, rejecting (with
// ErrNotATickMultiple) a price that the ingestion layer should have
// rounded already. Callers who want rounding instead of assertion should
// round upstream and call FromDecimal only once the value is already a
// tick multiple; this mirrors spec.md §3: "rounding is the ingestion
// layer's responsibility; the core asserts on debug builds."
func FromDecimal(d decimal.Decimal, t TickSize) (Price, error) {
	ratio := d.DivRound(t.d, 0)
	reconstructed := ratio.Mul(t.d)
	if !reconstructed.Equal(d) {
		return Price{}, fmt.Errorf("%w: %s is not a multiple of %s", ErrNotATickMultiple, d, t.d)
	}
	return Price{Ticks: ratio.IntPart()}, nil
}

// RoundToTick rounds d to the nearest tick without asserting exactness;
// this is the ingestion-layer rounding step the core itself never takes.
func RoundToTick(d decimal.Decimal, t TickSize) Price {
	ratio := d.DivRound(t.d, 0)
	return Price{Ticks: ratio.IntPart()}
}

// FromFloat64 is a convenience wrapper for hosts that only have a float64
// on hand (e.g. from an external feed); it rounds to the nearest tick.
func FromFloat64(f float64, t TickSize) Price {
	return RoundToTick(decimal.NewFromFloat(f), t)
}

// Decimal reconstructs the exact decimal value of the price.
func (p Price) Decimal(t TickSize) decimal.Decimal {
	return decimal.NewFromInt(p.Ticks).Mul(t.d)
}

// Float64 reconstructs a float64 approximation, for serialization
// boundaries where the wire schema calls for f64 (spec.md §6).
func (p Price) Float64(t TickSize) float64 {
	f, _ := p.Decimal(t).Float64()
	return f
}

// FormatTick renders the price as a decimal string at the tick size's
// exponent, used as a map key for per-price order sequences at the wire
// boundary (spec.md §6: "formatted to tick precision to avoid float key
// collisions").
func (p Price) FormatTick(t TickSize) string {
	return p.Decimal(t).StringFixed(-t.d.Exponent())
}

// Add returns p shifted by n ticks.
func (p Price) Add(n int64) Price { return Price{Ticks: p.Ticks + n} }

// Less reports whether p sorts strictly before q (ascending by price).
func (p Price) Less(q Price) bool { return p.Ticks < q.Ticks }

// Mid returns the midpoint tick of a and b, truncated toward zero (so
// rounded down for non-negative prices) (spec.md §4.7:
// "midPrice = (bestBid + bestAsk)/2"); callers needing the exact midpoint
// compute it outside the tick grid instead, as the snapshot assembler does
// on the float64 best bid/ask for the reported midPrice field.
func Mid(a, b Price) Price {
	return Price{Ticks: (a.Ticks + b.Ticks) / 2}
}

// FloorToTick floors a raw decimal price to the nearest tick below or
// equal ("floor(d / T) * T", spec.md §4.5 step 3). Because prices are
// already tick-indexed integers internally, flooring to a tick is the
// identity for a Price; this helper is for a price that arrives as a raw
// decimal. Nothing in the core calls it: the batcher's center price uses
// Mid on tick indices, and a configured SnapshotCenterPrice is already a
// Price.
func FloorToTick(d decimal.Decimal, t TickSize) Price {
	ratio := d.Div(t.d).Floor()
	return Price{Ticks: ratio.IntPart()}
}
