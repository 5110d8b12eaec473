package engine

import "math"

// ReasonCode enumerates RequestValidator outcomes.
type ReasonCode int

const (
	ReasonNone ReasonCode = iota
	ReasonBadOrderAsset
	ReasonBadPriceAsset
	ReasonBadPriceValue
	ReasonBadQuantityValue
	ReasonBadSequenceID
)

// RequestValidator is a pure function over a request and the book's
// configured pair. Ported from
// original_source/src/engine/validation.rs.
type RequestValidator[A comparable] struct {
	orderAsset A
	priceAsset A
	minID      uint64
	maxID      uint64
}

func NewRequestValidator[A comparable](orderAsset, priceAsset A, minID, maxID uint64) *RequestValidator[A] {
	return &RequestValidator[A]{
		orderAsset: orderAsset,
		priceAsset: priceAsset,
		minID:      minID,
		maxID:      maxID,
	}
}

func isValidPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

func isValidQty(q float64) bool {
	return q > 0 && !math.IsNaN(q) && !math.IsInf(q, 0)
}

// Validate returns the first violated rule, or ReasonNone.
func (v *RequestValidator[A]) Validate(req Request[A]) ReasonCode {
	switch r := req.(type) {
	case NewMarketRequest[A]:
		if r.OrderAsset != v.orderAsset {
			return ReasonBadOrderAsset
		}
		if r.PriceAsset != v.priceAsset {
			return ReasonBadPriceAsset
		}
		if !isValidQty(r.Qty) {
			return ReasonBadQuantityValue
		}
		return ReasonNone

	case NewLimitRequest[A]:
		if r.OrderAsset != v.orderAsset {
			return ReasonBadOrderAsset
		}
		if r.PriceAsset != v.priceAsset {
			return ReasonBadPriceAsset
		}
		if !isValidPrice(r.Price) {
			return ReasonBadPriceValue
		}
		if !isValidQty(r.Qty) {
			return ReasonBadQuantityValue
		}
		return ReasonNone

	case AmendRequest[A]:
		if r.ID < v.minID || r.ID > v.maxID {
			return ReasonBadSequenceID
		}
		if !isValidPrice(r.Price) {
			return ReasonBadPriceValue
		}
		if !isValidQty(r.Qty) {
			return ReasonBadQuantityValue
		}
		return ReasonNone

	case CancelRequest[A]:
		if r.ID < v.minID || r.ID > v.maxID {
			return ReasonBadSequenceID
		}
		return ReasonNone
	}
	return ReasonNone
}
