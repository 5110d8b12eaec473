package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testOrder(id uint64, name string) Order[string] {
	return Order[string]{ID: id, OrderAsset: "x", PriceAsset: string(name)}
}

func bidsQueue() *SideQueue[string] {
	q := NewSideQueue[string](Bid, 5, 10)
	must(q.Insert(1, 1.01, 1, testOrder(1, "low bid")))
	must(q.Insert(2, 1.02, 1, testOrder(2, "high bid first")))
	must(q.Insert(3, 1.02, 2, testOrder(3, "high bid second")))
	return q
}

func asksQueue() *SideQueue[string] {
	q := NewSideQueue[string](Ask, 5, 10)
	must(q.Insert(1, 1.01, 1, testOrder(1, "low ask first")))
	must(q.Insert(2, 1.02, 2, testOrder(2, "high ask")))
	must(q.Insert(3, 1.01, 3, testOrder(3, "low ask second")))
	return q
}

func must(ok bool) {
	if !ok {
		panic("setup insert failed")
	}
}

func TestSideQueue_InsertRejectsDuplicate(t *testing.T) {
	q := NewSideQueue[string](Bid, 5, 10)
	_, ok := q.Peek()
	assert.False(t, ok)

	assert.True(t, q.Insert(1, 1.01, 1, testOrder(1, "first")))
	assert.False(t, q.Insert(1, 1.02, 2, testOrder(1, "dup")))
}

func TestSideQueue_BidOrdering(t *testing.T) {
	q := bidsQueue()

	o, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), o.ID, "highest price first, earlier ts first on tie")

	o, _ = q.Pop()
	assert.Equal(t, uint64(3), o.ID)

	o, _ = q.Pop()
	assert.Equal(t, uint64(1), o.ID)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestSideQueue_AskOrdering(t *testing.T) {
	q := asksQueue()

	o, _ := q.Pop()
	assert.Equal(t, uint64(1), o.ID, "lowest price first, earlier ts first on tie")

	o, _ = q.Pop()
	assert.Equal(t, uint64(3), o.ID)

	o, _ = q.Pop()
	assert.Equal(t, uint64(2), o.ID)
}

func TestSideQueue_ModifyTopInPlace(t *testing.T) {
	q := bidsQueue()

	top, ok := q.Peek()
	assert.True(t, ok)
	top.Qty = 42
	q.ModifyTopInPlace(top)

	o, _ := q.Pop()
	assert.Equal(t, uint64(2), o.ID)
	assert.Equal(t, float64(42), o.Qty)

	o, _ = q.Pop()
	assert.Equal(t, uint64(3), o.ID)
}

func TestSideQueue_Amend(t *testing.T) {
	q := asksQueue()

	assert.True(t, q.Amend(2, 0.99, 4, testOrder(2, "new first")))
	assert.True(t, q.Amend(1, 1.01, 5, testOrder(1, "new last")))
	assert.False(t, q.Amend(4, 3.03, 6, testOrder(4, "nonexistent")))

	o, _ := q.Pop()
	assert.Equal(t, uint64(2), o.ID)
	o, _ = q.Pop()
	assert.Equal(t, uint64(3), o.ID)
	o, _ = q.Pop()
	assert.Equal(t, uint64(1), o.ID)
}

func TestSideQueue_CancelRoundTrip(t *testing.T) {
	q := bidsQueue()

	assert.True(t, q.Cancel(2))
	assert.False(t, q.Cancel(2), "second cancel of the same id is a no-op")

	o, _ := q.Pop()
	assert.Equal(t, uint64(3), o.ID)
	o, _ = q.Pop()
	assert.Equal(t, uint64(1), o.ID)
}

func TestSideQueue_CancelTriggersCompaction(t *testing.T) {
	q := NewSideQueue[string](Bid, 2, 10)
	for i := uint64(1); i <= 5; i++ {
		must(q.Insert(i, float64(i), int64(i), testOrder(i, "o")))
	}

	// The third cancel crosses maxStalled and forces a compaction.
	assert.True(t, q.Cancel(1))
	assert.True(t, q.Cancel(2))
	assert.True(t, q.Cancel(3))

	assert.LessOrEqual(t, len(q.h.entries), q.Len(), "compaction drops entries with no live order")

	assert.True(t, q.Cancel(4))

	o, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), o.ID)
}

func TestSideQueue_InsertCancelRoundTripIndistinguishable(t *testing.T) {
	fresh := NewSideQueue[string](Bid, 5, 10)
	withRoundTrip := NewSideQueue[string](Bid, 5, 10)

	must(withRoundTrip.Insert(99, 5.0, 1, testOrder(99, "transient")))
	assert.True(t, withRoundTrip.Cancel(99))

	_, freshOk := fresh.Peek()
	_, roundTripOk := withRoundTrip.Peek()
	assert.Equal(t, freshOk, roundTripOk)
	assert.Equal(t, fresh.Len(), withRoundTrip.Len())
}
