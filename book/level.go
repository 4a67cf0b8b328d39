// Package book implements the Order Book (spec.md §4.3): two Sorted
// Level Containers (bids, asks) plus a dirty-change log and structural
// change flag.
package book

import "github.com/saiputravu/ladder-core/pricing"

// Level is the BookLevel entity from spec.md §3.
type Level struct {
	Price        pricing.Price
	Quantity     uint64
	NumOrders    uint32
	Side         pricing.Side
	IsDirty      bool
	HasOwnOrders bool
}

// DirtyChange is the DirtyLevelChange entity from spec.md §3. IsAddition
// and IsRemoval are mutually exclusive; both false denotes a
// quantity/count change on an existing level.
type DirtyChange struct {
	Price     pricing.Price
	Side      pricing.Side
	IsRemoval bool
	IsAddition bool
}
