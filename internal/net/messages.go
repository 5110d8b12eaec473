// Package net implements the binary wire protocol translating client
// requests into engine.Request values and engine.Event values back
// into bytes. Ported from the teacher's internal/net/messages.go
// (same BigEndian fixed-header style; the teacher's length-prefixed
// username is replaced by a fixed 16-byte correlation id) onto the
// matchcore Request/Event shapes.
package net

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/saiputravu/matchcore/internal/common"
	"github.com/saiputravu/matchcore/internal/engine"
)

var (
	ErrMessageTooShort    = errors.New("message too short")
	ErrInvalidMessageType = errors.New("invalid message type")
)

// MessageType tags inbound wire requests, mirroring
// internal/net/messages.go's MessageType/NewOrder/CancelOrder enum.
type MessageType uint16

const (
	MsgHeartbeat MessageType = iota
	MsgNewMarket
	MsgNewLimit
	MsgAmend
	MsgCancel
)

const (
	headerLen      = 2
	correlationLen = 16
	symbolLen      = 4
)

// InboundMessage pairs a decoded request with the correlation id the
// client attached, so the server can address the matching event list
// back to the right caller.
type InboundMessage struct {
	Correlation uuid.UUID
	Request     engine.Request[common.Symbol]
}

func putSymbol(buf []byte, s common.Symbol) {
	copy(buf, []byte(s))
}

func getSymbol(buf []byte) common.Symbol {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return common.Symbol(buf[:n])
}

// ParseMessage decodes one inbound wire message.
func ParseMessage(msg []byte) (InboundMessage, error) {
	if len(msg) < headerLen {
		return InboundMessage{}, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]

	switch typeOf {
	case MsgNewMarket:
		return parseNewMarket(body)
	case MsgNewLimit:
		return parseNewLimit(body)
	case MsgAmend:
		return parseAmend(body)
	case MsgCancel:
		return parseCancel(body)
	default:
		return InboundMessage{}, ErrInvalidMessageType
	}
}

const newMarketBodyLen = symbolLen + symbolLen + 1 + 8 + correlationLen

func parseNewMarket(b []byte) (InboundMessage, error) {
	if len(b) < newMarketBodyLen {
		return InboundMessage{}, ErrMessageTooShort
	}
	orderAsset := getSymbol(b[0:4])
	priceAsset := getSymbol(b[4:8])
	side := engine.OrderSide(b[8])
	qty := math.Float64frombits(binary.BigEndian.Uint64(b[9:17]))
	corr, err := uuid.FromBytes(b[17:33])
	if err != nil {
		return InboundMessage{}, err
	}
	return InboundMessage{
		Correlation: corr,
		Request: engine.NewMarketRequest[common.Symbol]{
			OrderAsset: orderAsset,
			PriceAsset: priceAsset,
			Side:       side,
			Qty:        qty,
		},
	}, nil
}

const newLimitBodyLen = symbolLen + symbolLen + 1 + 8 + 8 + correlationLen

func parseNewLimit(b []byte) (InboundMessage, error) {
	if len(b) < newLimitBodyLen {
		return InboundMessage{}, ErrMessageTooShort
	}
	orderAsset := getSymbol(b[0:4])
	priceAsset := getSymbol(b[4:8])
	side := engine.OrderSide(b[8])
	price := math.Float64frombits(binary.BigEndian.Uint64(b[9:17]))
	qty := math.Float64frombits(binary.BigEndian.Uint64(b[17:25]))
	corr, err := uuid.FromBytes(b[25:41])
	if err != nil {
		return InboundMessage{}, err
	}
	return InboundMessage{
		Correlation: corr,
		Request: engine.NewLimitRequest[common.Symbol]{
			OrderAsset: orderAsset,
			PriceAsset: priceAsset,
			Side:       side,
			Price:      price,
			Qty:        qty,
		},
	}, nil
}

const amendBodyLen = 8 + 1 + 8 + 8 + correlationLen

func parseAmend(b []byte) (InboundMessage, error) {
	if len(b) < amendBodyLen {
		return InboundMessage{}, ErrMessageTooShort
	}
	id := binary.BigEndian.Uint64(b[0:8])
	side := engine.OrderSide(b[8])
	price := math.Float64frombits(binary.BigEndian.Uint64(b[9:17]))
	qty := math.Float64frombits(binary.BigEndian.Uint64(b[17:25]))
	corr, err := uuid.FromBytes(b[25:41])
	if err != nil {
		return InboundMessage{}, err
	}
	return InboundMessage{
		Correlation: corr,
		Request: engine.AmendRequest[common.Symbol]{
			ID:    id,
			Side:  side,
			Price: price,
			Qty:   qty,
		},
	}, nil
}

const cancelBodyLen = 8 + 1 + correlationLen

func parseCancel(b []byte) (InboundMessage, error) {
	if len(b) < cancelBodyLen {
		return InboundMessage{}, ErrMessageTooShort
	}
	id := binary.BigEndian.Uint64(b[0:8])
	side := engine.OrderSide(b[8])
	corr, err := uuid.FromBytes(b[9:25])
	if err != nil {
		return InboundMessage{}, err
	}
	return InboundMessage{
		Correlation: corr,
		Request: engine.CancelRequest[common.Symbol]{
			ID:   id,
			Side: side,
		},
	}, nil
}

// EncodeEvent serializes one outbound event, tagged with the
// correlation id of the request that produced it.
func EncodeEvent(corr uuid.UUID, ev engine.Event) []byte {
	buf := make([]byte, 1+correlationLen+24)
	buf[0] = byte(ev.Kind())
	copy(buf[1:17], corr[:])

	tail := buf[17:]
	switch e := ev.(type) {
	case engine.AcceptedEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.ID)
		tail[8] = byte(e.OrderType)
	case engine.FilledEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
		binary.BigEndian.PutUint64(tail[8:16], math.Float64bits(e.Price))
		binary.BigEndian.PutUint64(tail[16:24], math.Float64bits(e.Qty))
	case engine.PartiallyFilledEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
		binary.BigEndian.PutUint64(tail[8:16], math.Float64bits(e.Price))
		binary.BigEndian.PutUint64(tail[16:24], math.Float64bits(e.Qty))
	case engine.AmendedEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.ID)
		binary.BigEndian.PutUint64(tail[8:16], math.Float64bits(e.Price))
		binary.BigEndian.PutUint64(tail[16:24], math.Float64bits(e.Qty))
	case engine.CancelledEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.ID)
	case engine.NoMatchEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
	case engine.OrderNotFoundEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
	case engine.DuplicateOrderIDEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
	case engine.AmendWouldCrossEvent:
		binary.BigEndian.PutUint64(tail[0:8], e.OrderID)
	}
	return buf
}

// EventWireLen is the fixed size EncodeEvent always produces, so a
// reader can frame the stream without a length prefix.
const EventWireLen = 1 + correlationLen + 24

// DecodedEvent pairs a decoded event with the correlation id of the
// request that produced it, for the client side of the wire.
type DecodedEvent struct {
	Correlation uuid.UUID
	Event       engine.Event
}

// DecodeEvent reverses EncodeEvent, used by clients reading server
// replies off the wire. The wire record carries no timestamps, and no
// Side or OrderType for fill legs, so those fields decode as zero
// values.
func DecodeEvent(buf []byte) (DecodedEvent, error) {
	if len(buf) < EventWireLen {
		return DecodedEvent{}, ErrMessageTooShort
	}
	kind := engine.EventKind(buf[0])
	corr, err := uuid.FromBytes(buf[1:17])
	if err != nil {
		return DecodedEvent{}, err
	}
	tail := buf[17:]

	var ev engine.Event
	switch kind {
	case engine.EventAccepted:
		ev = engine.AcceptedEvent{ID: binary.BigEndian.Uint64(tail[0:8]), OrderType: engine.OrderType(tail[8])}
	case engine.EventFilled:
		ev = engine.FilledEvent{
			OrderID: binary.BigEndian.Uint64(tail[0:8]),
			Price:   math.Float64frombits(binary.BigEndian.Uint64(tail[8:16])),
			Qty:     math.Float64frombits(binary.BigEndian.Uint64(tail[16:24])),
		}
	case engine.EventPartiallyFilled:
		ev = engine.PartiallyFilledEvent{
			OrderID: binary.BigEndian.Uint64(tail[0:8]),
			Price:   math.Float64frombits(binary.BigEndian.Uint64(tail[8:16])),
			Qty:     math.Float64frombits(binary.BigEndian.Uint64(tail[16:24])),
		}
	case engine.EventAmended:
		ev = engine.AmendedEvent{
			ID:    binary.BigEndian.Uint64(tail[0:8]),
			Price: math.Float64frombits(binary.BigEndian.Uint64(tail[8:16])),
			Qty:   math.Float64frombits(binary.BigEndian.Uint64(tail[16:24])),
		}
	case engine.EventCancelled:
		ev = engine.CancelledEvent{ID: binary.BigEndian.Uint64(tail[0:8])}
	case engine.EventNoMatch:
		ev = engine.NoMatchEvent{OrderID: binary.BigEndian.Uint64(tail[0:8])}
	case engine.EventOrderNotFound:
		ev = engine.OrderNotFoundEvent{OrderID: binary.BigEndian.Uint64(tail[0:8])}
	case engine.EventDuplicateOrderID:
		ev = engine.DuplicateOrderIDEvent{OrderID: binary.BigEndian.Uint64(tail[0:8])}
	case engine.EventAmendWouldCross:
		ev = engine.AmendWouldCrossEvent{OrderID: binary.BigEndian.Uint64(tail[0:8])}
	case engine.EventBadOrderAsset:
		ev = engine.BadOrderAssetEvent{}
	case engine.EventBadPriceAsset:
		ev = engine.BadPriceAssetEvent{}
	case engine.EventBadPriceValue:
		ev = engine.BadPriceValueEvent{}
	case engine.EventBadQuantityValue:
		ev = engine.BadQuantityValueEvent{}
	case engine.EventBadSequenceID:
		ev = engine.BadSequenceIDEvent{}
	default:
		return DecodedEvent{}, ErrInvalidMessageType
	}
	return DecodedEvent{Correlation: corr, Event: ev}, nil
}
