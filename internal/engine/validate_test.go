package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidator_NewMarket(t *testing.T) {
	v := NewRequestValidator[string]("BTC", "USD", 1, 1000)

	cases := []struct {
		name string
		req  NewMarketRequest[string]
		want ReasonCode
	}{
		{"ok", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Qty: 1}, ReasonNone},
		{"bad order asset", NewMarketRequest[string]{OrderAsset: "ETH", PriceAsset: "USD", Qty: 1}, ReasonBadOrderAsset},
		{"bad price asset", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "EUR", Qty: 1}, ReasonBadPriceAsset},
		{"zero qty", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Qty: 0}, ReasonBadQuantityValue},
		{"negative qty", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Qty: -1}, ReasonBadQuantityValue},
		{"nan qty", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Qty: math.NaN()}, ReasonBadQuantityValue},
		{"inf qty", NewMarketRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Qty: math.Inf(1)}, ReasonBadQuantityValue},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, v.Validate(c.req))
		})
	}
}

func TestRequestValidator_NewLimit(t *testing.T) {
	v := NewRequestValidator[string]("BTC", "USD", 1, 1000)

	cases := []struct {
		name string
		req  NewLimitRequest[string]
		want ReasonCode
	}{
		{"ok", NewLimitRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Price: 10, Qty: 1}, ReasonNone},
		{"zero price", NewLimitRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Price: 0, Qty: 1}, ReasonBadPriceValue},
		{"negative price", NewLimitRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Price: -5, Qty: 1}, ReasonBadPriceValue},
		{"nan price", NewLimitRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Price: math.NaN(), Qty: 1}, ReasonBadPriceValue},
		{"zero qty", NewLimitRequest[string]{OrderAsset: "BTC", PriceAsset: "USD", Price: 10, Qty: 0}, ReasonBadQuantityValue},
		{"bad order asset wins first", NewLimitRequest[string]{OrderAsset: "ETH", PriceAsset: "USD", Price: -1, Qty: -1}, ReasonBadOrderAsset},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, v.Validate(c.req))
		})
	}
}

func TestRequestValidator_Amend(t *testing.T) {
	v := NewRequestValidator[string]("BTC", "USD", 1, 1000)

	assert.Equal(t, ReasonNone, v.Validate(AmendRequest[string]{ID: 5, Price: 10, Qty: 1}))
	assert.Equal(t, ReasonBadSequenceID, v.Validate(AmendRequest[string]{ID: 0, Price: 10, Qty: 1}))
	assert.Equal(t, ReasonBadSequenceID, v.Validate(AmendRequest[string]{ID: 1001, Price: 10, Qty: 1}))
	assert.Equal(t, ReasonBadPriceValue, v.Validate(AmendRequest[string]{ID: 5, Price: 0, Qty: 1}))
	assert.Equal(t, ReasonBadQuantityValue, v.Validate(AmendRequest[string]{ID: 5, Price: 10, Qty: 0}))
}

func TestRequestValidator_Cancel(t *testing.T) {
	v := NewRequestValidator[string]("BTC", "USD", 1, 1000)

	assert.Equal(t, ReasonNone, v.Validate(CancelRequest[string]{ID: 5}))
	assert.Equal(t, ReasonBadSequenceID, v.Validate(CancelRequest[string]{ID: 0}))
	assert.Equal(t, ReasonBadSequenceID, v.Validate(CancelRequest[string]{ID: 1001}))
}
