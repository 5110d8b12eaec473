// Package depth maintains a price-aggregated read model of a book's
// live resting liquidity, rebuilt from the Event values an
// engine.Engine emits. It never touches the matching heap: it is a
// supplemental market-data view, not part of the matching contract.
//
// Grounded on the teacher's internal/engine/orderbook.go, which keeps
// a btree.BTreeG[*PriceLevel] per side for the same reason (cheap
// ordered iteration over price levels for anything other than raw
// matching).
package depth

import (
	"github.com/saiputravu/matchcore/internal/engine"
	"github.com/tidwall/btree"
)

// Level is one aggregated price point: total live quantity resting
// at that price, on one side.
type Level struct {
	Price float64
	Qty   float64
}

type levels = btree.BTreeG[*Level]

// restingOrder is what the depth book remembers about one live
// resting order: just enough to undo its contribution to a level.
type restingOrder struct {
	side  engine.OrderSide
	price float64
	qty   float64
}

// Book aggregates Bid and Ask liquidity by price. Zero value is not
// usable; construct with New.
type Book struct {
	bids *levels
	asks *levels

	resting map[uint64]restingOrder
}

// New builds an empty depth book.
func New() *Book {
	return &Book{
		bids:    btree.NewBTreeG(func(a, b *Level) bool { return a.Price > b.Price }),
		asks:    btree.NewBTreeG(func(a, b *Level) bool { return a.Price < b.Price }),
		resting: make(map[uint64]restingOrder),
	}
}

func (b *Book) levelsFor(side engine.OrderSide) *levels {
	if side == engine.Bid {
		return b.bids
	}
	return b.asks
}

func (b *Book) addQty(side engine.OrderSide, price, qty float64) {
	lv := b.levelsFor(side)
	if existing, ok := lv.Get(&Level{Price: price}); ok {
		existing.Qty += qty
		return
	}
	lv.Set(&Level{Price: price, Qty: qty})
}

func (b *Book) subQty(side engine.OrderSide, price, qty float64) {
	lv := b.levelsFor(side)
	existing, ok := lv.Get(&Level{Price: price})
	if !ok {
		return
	}
	existing.Qty -= qty
	if existing.Qty <= 0 {
		lv.Delete(existing)
	}
}

// NoteRest records that a limit order now rests with qty at price,
// either because it was just accepted and rested untouched, or
// because a partial fill left it resting with a reduced qty. Calling
// it again for the same id replaces the order's prior contribution
// rather than double-counting it.
func (b *Book) NoteRest(id uint64, side engine.OrderSide, price, qty float64) {
	if old, ok := b.resting[id]; ok {
		b.subQty(old.side, old.price, old.qty)
	}
	b.addQty(side, price, qty)
	b.resting[id] = restingOrder{side: side, price: price, qty: qty}
}

// Forget removes a resting order's contribution entirely, for full
// fills and cancels.
func (b *Book) Forget(id uint64) {
	if old, ok := b.resting[id]; ok {
		b.subQty(old.side, old.price, old.qty)
		delete(b.resting, id)
	}
}

// Apply folds one request's emitted events into the depth book. Call
// it with the exact slice engine.Engine.Process returned, in order,
// immediately after the matching call they came from so NoteRest's
// "id just accepted" case stays correct.
//
// Apply only reacts to the events that change resting liquidity
// (PartiallyFilled on the maker leg, Filled on the maker leg,
// Cancelled, Amended); Accepted alone never changes depth, since a
// freshly accepted limit order that goes on to rest is reported via
// the caller's own NoteRest call once Process returns, using the
// order id assigned by the first Accepted event and the request's own
// price/remaining qty.
func (b *Book) Apply(events []engine.Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case engine.PartiallyFilledEvent:
			if e.OrderType == engine.Limit {
				if old, ok := b.resting[e.OrderID]; ok {
					b.NoteRest(e.OrderID, old.side, old.price, old.qty-e.Qty)
				}
			}
		case engine.FilledEvent:
			if e.OrderType == engine.Limit {
				b.Forget(e.OrderID)
			}
		case engine.CancelledEvent:
			b.Forget(e.ID)
		case engine.AmendedEvent:
			if old, ok := b.resting[e.ID]; ok {
				b.NoteRest(e.ID, old.side, e.Price, e.Qty)
			}
		}
	}
}

// Snapshot returns up to n aggregated levels per side, best price
// first.
func (b *Book) Snapshot(n int) (bids, asks []Level) {
	b.bids.Scan(func(l *Level) bool {
		if len(bids) >= n {
			return false
		}
		bids = append(bids, *l)
		return true
	})
	b.asks.Scan(func(l *Level) bool {
		if len(asks) >= n {
			return false
		}
		asks = append(asks, *l)
		return true
	})
	return bids, asks
}
