package engine

import "time"

// Default constants from spec §6.
const (
	DefaultMinID        uint64 = 1
	DefaultMaxID        uint64 = 1000
	DefaultMaxStalled          = 10
	DefaultCapacityHint        = 500
)

// Config carries the constructor parameters spec §6 lists as
// implicit constants the embedder may expose as configuration.
type Config struct {
	MinID        uint64
	MaxID        uint64
	MaxStalled   int
	CapacityHint int
	// Clock supplies the wall-clock reads used to stamp emitted
	// events (spec §9: ts inside events is best-effort and never
	// used for ordering). Defaults to time.Now().UnixNano.
	Clock func() int64
}

func (c Config) withDefaults() Config {
	if c.MinID == 0 && c.MaxID == 0 {
		c.MinID, c.MaxID = DefaultMinID, DefaultMaxID
	}
	if c.MaxStalled == 0 {
		c.MaxStalled = DefaultMaxStalled
	}
	if c.CapacityHint == 0 {
		c.CapacityHint = DefaultCapacityHint
	}
	if c.Clock == nil {
		c.Clock = func() int64 { return time.Now().UnixNano() }
	}
	return c
}

// Engine is the top-level book: two SideQueues, an id generator, a
// validator and the pair configuration. A is the embedder's opaque
// asset tag.
type Engine[A comparable] struct {
	orderAsset A
	priceAsset A

	bids *SideQueue[A]
	asks *SideQueue[A]

	ids       *IDGenerator
	validator *RequestValidator[A]
	clock     func() int64
}

// New constructs an Engine configured for one order/price asset pair.
func New[A comparable](orderAsset, priceAsset A, cfg Config) *Engine[A] {
	cfg = cfg.withDefaults()
	return &Engine[A]{
		orderAsset: orderAsset,
		priceAsset: priceAsset,
		bids:       NewSideQueue[A](Bid, cfg.MaxStalled, cfg.CapacityHint),
		asks:       NewSideQueue[A](Ask, cfg.MaxStalled, cfg.CapacityHint),
		ids:        NewIDGenerator(cfg.MinID, cfg.MaxID),
		validator:  NewRequestValidator[A](orderAsset, priceAsset, cfg.MinID, cfg.MaxID),
		clock:      cfg.Clock,
	}
}

func (e *Engine[A]) now() int64 { return e.clock() }

func (e *Engine[A]) queueFor(side OrderSide) *SideQueue[A] {
	if side == Bid {
		return e.bids
	}
	return e.asks
}

func (e *Engine[A]) oppositeOf(side OrderSide) *SideQueue[A] {
	if side == Bid {
		return e.asks
	}
	return e.bids
}

// BestBidAsk returns (bid price, ask price) when both sides have at
// least one live order; peeking triggers lazy cleanup on each side.
func (e *Engine[A]) BestBidAsk() (bid, ask float64, ok bool) {
	b, bok := e.bids.Peek()
	a, aok := e.asks.Peek()
	if !bok || !aok {
		return 0, 0, false
	}
	return b.Price, a.Price, true
}

func validationEvent(reason ReasonCode, ts int64) Event {
	switch reason {
	case ReasonBadOrderAsset:
		return BadOrderAssetEvent{Ts: ts}
	case ReasonBadPriceAsset:
		return BadPriceAssetEvent{Ts: ts}
	case ReasonBadPriceValue:
		return BadPriceValueEvent{Ts: ts}
	case ReasonBadQuantityValue:
		return BadQuantityValueEvent{Ts: ts}
	case ReasonBadSequenceID:
		return BadSequenceIDEvent{Ts: ts}
	default:
		return nil
	}
}

// Process validates, dispatches and returns the emission-ordered
// event list for one request.
func (e *Engine[A]) Process(req Request[A]) []Event {
	if reason := e.validator.Validate(req); reason != ReasonNone {
		return []Event{validationEvent(reason, e.now())}
	}

	switch r := req.(type) {
	case NewMarketRequest[A]:
		return e.processNewMarket(r)
	case NewLimitRequest[A]:
		return e.processNewLimit(r)
	case AmendRequest[A]:
		return e.processAmend(r)
	case CancelRequest[A]:
		return e.processCancel(r)
	}
	return nil
}

// matchLoop consumes the opposite queue while the aggressor still has
// qty and (for limit aggressors) still crosses. hasLimit/limitPrice
// are ignored for market aggressors, which always cross a non-empty
// book. Implements spec §4.4.2/§4.4.3's shared match loop, including
// the prescribed event-ordering asymmetry between the qty<opp.qty and
// qty>opp.qty cases (spec §9).
func (e *Engine[A]) matchLoop(opp *SideQueue[A], id uint64, side OrderSide, orderType OrderType, hasLimit bool, limitPrice float64, qty float64) ([]Event, float64) {
	var events []Event

	for qty > 0 {
		top, ok := opp.Peek()
		if !ok {
			break
		}
		if hasLimit {
			crosses := (side == Bid && limitPrice >= top.Price) || (side == Ask && limitPrice <= top.Price)
			if !crosses {
				break
			}
		}

		t := e.now()
		switch {
		case qty < top.Qty:
			events = append(events,
				FilledEvent{OrderID: id, Side: side, OrderType: orderType, Price: top.Price, Qty: qty, Ts: t},
				PartiallyFilledEvent{OrderID: top.ID, Side: top.Side, OrderType: Limit, Price: top.Price, Qty: qty, Ts: t},
			)
			remaining := top
			remaining.Qty = top.Qty - qty
			opp.ModifyTopInPlace(remaining)
			qty = 0

		case qty > top.Qty:
			events = append(events,
				PartiallyFilledEvent{OrderID: id, Side: side, OrderType: orderType, Price: top.Price, Qty: top.Qty, Ts: t},
				FilledEvent{OrderID: top.ID, Side: top.Side, OrderType: Limit, Price: top.Price, Qty: top.Qty, Ts: t},
			)
			opp.Pop()
			qty -= top.Qty

		default: // qty == top.Qty
			events = append(events,
				FilledEvent{OrderID: id, Side: side, OrderType: orderType, Price: top.Price, Qty: qty, Ts: t},
				FilledEvent{OrderID: top.ID, Side: top.Side, OrderType: Limit, Price: top.Price, Qty: qty, Ts: t},
			)
			opp.Pop()
			qty = 0
		}
	}

	return events, qty
}

func (e *Engine[A]) processNewMarket(r NewMarketRequest[A]) []Event {
	id := e.ids.Mint()
	events := []Event{AcceptedEvent{ID: id, OrderType: Market, Ts: e.now()}}

	fills, remaining := e.matchLoop(e.oppositeOf(r.Side), id, r.Side, Market, false, 0, r.Qty)
	events = append(events, fills...)

	if remaining > 0 {
		events = append(events, NoMatchEvent{OrderID: id, Ts: e.now()})
	}
	return events
}

func (e *Engine[A]) processNewLimit(r NewLimitRequest[A]) []Event {
	id := e.ids.Mint()
	events := []Event{AcceptedEvent{ID: id, OrderType: Limit, Ts: e.now()}}

	fills, remaining := e.matchLoop(e.oppositeOf(r.Side), id, r.Side, Limit, true, r.Price, r.Qty)
	events = append(events, fills...)

	if remaining > 0 {
		order := Order[A]{
			ID:         id,
			OrderAsset: r.OrderAsset,
			PriceAsset: r.PriceAsset,
			Side:       r.Side,
			Price:      r.Price,
			Qty:        remaining,
			Ts:         r.Ts,
		}
		if !e.queueFor(r.Side).Insert(id, r.Price, r.Ts, order) {
			events = append(events, DuplicateOrderIDEvent{OrderID: id, Ts: e.now()})
		}
	}
	return events
}

func (e *Engine[A]) processAmend(r AmendRequest[A]) []Event {
	q := e.queueFor(r.Side)
	existing, ok := q.Get(r.ID)
	if !ok {
		return []Event{OrderNotFoundEvent{OrderID: r.ID, Ts: e.now()}}
	}

	if top, ok := e.oppositeOf(r.Side).Peek(); ok {
		crosses := (r.Side == Bid && r.Price >= top.Price) || (r.Side == Ask && r.Price <= top.Price)
		if crosses {
			return []Event{AmendWouldCrossEvent{OrderID: r.ID, Ts: e.now()}}
		}
	}

	updated := existing
	updated.Price, updated.Qty, updated.Ts = r.Price, r.Qty, r.Ts
	q.Amend(r.ID, r.Price, r.Ts, updated)
	return []Event{AmendedEvent{ID: r.ID, Price: r.Price, Qty: r.Qty, Ts: e.now()}}
}

func (e *Engine[A]) processCancel(r CancelRequest[A]) []Event {
	if e.queueFor(r.Side).Cancel(r.ID) {
		return []Event{CancelledEvent{ID: r.ID, Ts: e.now()}}
	}
	return []Event{OrderNotFoundEvent{OrderID: r.ID, Ts: e.now()}}
}
