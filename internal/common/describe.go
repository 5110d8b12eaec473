// Package common holds small, dependency-light helpers shared between
// the networking and server layers — string formatting for log lines,
// mirroring the teacher's internal/common package, which gave Order
// and Trade Stringer implementations for exactly this purpose.
package common

import (
	"fmt"

	"github.com/saiputravu/matchcore/internal/engine"
)

// Symbol is the concrete asset tag this repository's networking and
// server layers instantiate engine.Engine with: a plain ticker string
// such as "BTC" or "USD".
type Symbol string

// DescribeOrder renders a resting order the way the teacher's
// Order.String() rendered wire orders, for structured log fields.
func DescribeOrder(o engine.Order[Symbol]) string {
	return fmt.Sprintf("#%d %s %s@%s qty=%s", o.ID, o.Side, formatFloat(o.Price), o.OrderAsset, formatFloat(o.Qty))
}

// DescribeEvent renders an event for a single structured log line.
func DescribeEvent(ev engine.Event) string {
	switch e := ev.(type) {
	case engine.AcceptedEvent:
		return fmt.Sprintf("accepted id=%d type=%s", e.ID, e.OrderType)
	case engine.FilledEvent:
		return fmt.Sprintf("filled id=%d side=%s price=%s qty=%s", e.OrderID, e.Side, formatFloat(e.Price), formatFloat(e.Qty))
	case engine.PartiallyFilledEvent:
		return fmt.Sprintf("partially-filled id=%d side=%s price=%s qty=%s", e.OrderID, e.Side, formatFloat(e.Price), formatFloat(e.Qty))
	case engine.AmendedEvent:
		return fmt.Sprintf("amended id=%d price=%s qty=%s", e.ID, formatFloat(e.Price), formatFloat(e.Qty))
	case engine.CancelledEvent:
		return fmt.Sprintf("cancelled id=%d", e.ID)
	case engine.NoMatchEvent:
		return fmt.Sprintf("no-match id=%d", e.OrderID)
	case engine.OrderNotFoundEvent:
		return fmt.Sprintf("order-not-found id=%d", e.OrderID)
	case engine.DuplicateOrderIDEvent:
		return fmt.Sprintf("duplicate-order-id id=%d", e.OrderID)
	case engine.AmendWouldCrossEvent:
		return fmt.Sprintf("amend-would-cross id=%d", e.OrderID)
	default:
		return fmt.Sprintf("rejected kind=%d", ev.Kind())
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.8f", f)
}
