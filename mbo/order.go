// Package mbo implements the MBO Manager (spec.md §4.4): per-price order
// sets plus a global order index, aggregating to the Order Book. It is
// the sole writer to the book in MBO mode (spec.md §3 Ownership).
package mbo

import "github.com/saiputravu/ladder-core/pricing"

// Order is the Order entity from spec.md §3.
type Order struct {
	OrderID    uint64
	Quantity   uint64
	Priority   uint64
	IsOwnOrder bool
}

// UpdateType is the OrderUpdateType sum type from spec.md §3.
type UpdateType uint8

const (
	Add UpdateType = iota
	Modify
	Delete
)

// Update is the OrderUpdate entity from spec.md §3.
type Update struct {
	OrderID  uint64
	Side     pricing.Side
	Price    pricing.Price
	Quantity uint64
	Priority uint64
	IsOwn    bool
}
