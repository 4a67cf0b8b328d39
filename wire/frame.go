package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/saiputravu/ladder-core/mbo"
	"github.com/saiputravu/ladder-core/pricing"
)

// PriceLevelFrameSize is the fixed size of a binary PriceLevel update
// frame (spec.md §6): [side:u8][price:f64][quantity:i32][numOrders:i32],
// little-endian.
const PriceLevelFrameSize = 17

// OrderUpdateFrameSize is the fixed size of the packed OrderUpdate
// payload (spec.md §6): {orderId:i64, side:u8, price:f64, quantity:i64,
// priority:i64, isOwnOrder:u8}. The six fields occupy 34 bytes; the
// remaining 7 are reserved and must be zero on encode and are ignored
// on decode (spec.md states the frame is 41 bytes; this module holds
// that width rather than second-guessing the wire size).
const OrderUpdateFrameSize = 41

// OrderUpdateTypeFrameSize is the one-byte OrderUpdateType suffix
// appended after the packed OrderUpdate payload.
const OrderUpdateTypeFrameSize = 1

// ErrFrameTooShort is returned by the decoders below when the input is
// shorter than the fixed frame size. Per spec.md §7, a malformed frame
// is silently discarded by callers, never partially applied.
var ErrFrameTooShort = errors.New("wire: frame shorter than expected size")

// DecodedPriceLevelUpdate is the decoded form of a binary PriceLevel
// update frame, still expressed in the wire's raw float64 price; callers
// convert to pricing.Price via pricing.FromFloat64 at the instrument's
// configured tick size.
type DecodedPriceLevelUpdate struct {
	Side      pricing.Side
	Price     float64
	Quantity  int32
	NumOrders int32
}

// DecodePriceLevelFrame decodes a 17-byte binary PriceLevel update frame.
func DecodePriceLevelFrame(buf []byte) (DecodedPriceLevelUpdate, error) {
	if len(buf) < PriceLevelFrameSize {
		return DecodedPriceLevelUpdate{}, ErrFrameTooShort
	}
	return DecodedPriceLevelUpdate{
		Side:      pricing.Side(buf[0]),
		Price:     math.Float64frombits(binary.LittleEndian.Uint64(buf[1:9])),
		Quantity:  int32(binary.LittleEndian.Uint32(buf[9:13])),
		NumOrders: int32(binary.LittleEndian.Uint32(buf[13:17])),
	}, nil
}

// EncodePriceLevelFrame encodes u into a 17-byte binary PriceLevel
// update frame.
func EncodePriceLevelFrame(u DecodedPriceLevelUpdate) [PriceLevelFrameSize]byte {
	var buf [PriceLevelFrameSize]byte
	buf[0] = byte(u.Side)
	binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(u.Price))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(u.Quantity))
	binary.LittleEndian.PutUint32(buf[13:17], uint32(u.NumOrders))
	return buf
}

// DecodedOrderUpdate is the decoded form of a binary OrderUpdate frame
// plus its trailing OrderUpdateType byte.
type DecodedOrderUpdate struct {
	OrderID    int64
	Side       pricing.Side
	Price      float64
	Quantity   int64
	Priority   int64
	IsOwnOrder bool
	Type       mbo.UpdateType
}

// DecodeOrderUpdateFrame decodes a 42-byte binary OrderUpdate frame
// (41-byte payload plus 1-byte OrderUpdateType suffix).
func DecodeOrderUpdateFrame(buf []byte) (DecodedOrderUpdate, error) {
	if len(buf) < OrderUpdateFrameSize+OrderUpdateTypeFrameSize {
		return DecodedOrderUpdate{}, ErrFrameTooShort
	}
	return DecodedOrderUpdate{
		OrderID:    int64(binary.LittleEndian.Uint64(buf[0:8])),
		Side:       pricing.Side(buf[8]),
		Price:      math.Float64frombits(binary.LittleEndian.Uint64(buf[9:17])),
		Quantity:   int64(binary.LittleEndian.Uint64(buf[17:25])),
		Priority:   int64(binary.LittleEndian.Uint64(buf[25:33])),
		IsOwnOrder: buf[33] != 0,
		Type:       mbo.UpdateType(buf[OrderUpdateFrameSize]),
	}, nil
}

// EncodeOrderUpdateFrame encodes u into a 42-byte binary OrderUpdate
// frame, zeroing the reserved tail of the 41-byte payload.
func EncodeOrderUpdateFrame(u DecodedOrderUpdate) [OrderUpdateFrameSize + OrderUpdateTypeFrameSize]byte {
	var buf [OrderUpdateFrameSize + OrderUpdateTypeFrameSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(u.OrderID))
	buf[8] = byte(u.Side)
	binary.LittleEndian.PutUint64(buf[9:17], math.Float64bits(u.Price))
	binary.LittleEndian.PutUint64(buf[17:25], uint64(u.Quantity))
	binary.LittleEndian.PutUint64(buf[25:33], uint64(u.Priority))
	if u.IsOwnOrder {
		buf[33] = 1
	}
	buf[OrderUpdateFrameSize] = byte(u.Type)
	return buf
}

// ToPrice converts the decoded price-level frame's raw wire price to a
// pricing.Price at the instrument's tick size.
func (d DecodedPriceLevelUpdate) ToPrice(ts pricing.TickSize) pricing.Price {
	return pricing.FromFloat64(d.Price, ts)
}

// ToPrice converts the decoded OrderUpdate's raw wire price to a
// pricing.Price at the instrument's tick size.
func (d DecodedOrderUpdate) ToPrice(ts pricing.TickSize) pricing.Price {
	return pricing.FromFloat64(d.Price, ts)
}

// clampQuantity coerces a negative wire quantity to zero, the removal
// sentinel (spec.md §7: "the core never stores negative quantity"),
// logging a debug note so a malformed upstream feed is visible without
// aborting the stream.
func clampQuantity(q int64, logger zerolog.Logger) uint64 {
	if q < 0 {
		logger.Debug().Int64("raw_quantity", q).Msg("wire: negative quantity coerced to removal")
		return 0
	}
	return uint64(q)
}

// ClampedQuantity returns the frame's Quantity coerced per clampQuantity,
// for callers building a PriceLevelUpdate from this decoded frame.
func (d DecodedPriceLevelUpdate) ClampedQuantity(logger zerolog.Logger) uint64 {
	return clampQuantity(int64(d.Quantity), logger)
}

// ToMBOUpdate converts a decoded OrderUpdate frame into an mbo.Update,
// dropping the trailing Type byte (the caller dispatches on d.Type
// separately, mirroring mbo.Manager.Process's typ parameter). A negative
// wire Quantity is coerced to 0 per clampQuantity.
func (d DecodedOrderUpdate) ToMBOUpdate(ts pricing.TickSize, logger zerolog.Logger) mbo.Update {
	return mbo.Update{
		OrderID:  uint64(d.OrderID),
		Side:     d.Side,
		Price:    d.ToPrice(ts),
		Quantity: clampQuantity(d.Quantity, logger),
		Priority: uint64(d.Priority),
		IsOwn:    d.IsOwnOrder,
	}
}
