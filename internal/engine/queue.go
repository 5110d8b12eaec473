package engine

import "container/heap"

// indexEntry is the heap-ordered pointer into a SideQueue's order map.
// Mirrors original_source/src/engine/order_queues.rs's OrderIndex.
type indexEntry struct {
	id    uint64
	price float64
	ts    int64
}

// indexHeap implements heap.Interface the way the teacher's
// internal/book/buy_book.go and sell_book.go implement
// container/heap's Len/Less/Swap/Push/Pop, generalized to a single
// side-aware comparator instead of two hand-duplicated types.
type indexHeap struct {
	entries []indexEntry
	less    func(a, b indexEntry) bool
}

func (h *indexHeap) Len() int { return len(h.entries) }

func (h *indexHeap) Less(i, j int) bool { return h.less(h.entries[i], h.entries[j]) }

func (h *indexHeap) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *indexHeap) Push(x any) { h.entries = append(h.entries, x.(indexEntry)) }

func (h *indexHeap) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	return e
}

// bidPriority reports whether a has strictly higher matching priority
// than b on the bid side: higher price first, earlier ts breaks ties.
func bidPriority(a, b indexEntry) bool {
	if a.price != b.price {
		return a.price > b.price
	}
	return a.ts < b.ts
}

// askPriority is bidPriority's mirror: lower price first.
func askPriority(a, b indexEntry) bool {
	if a.price != b.price {
		return a.price < b.price
	}
	return a.ts < b.ts
}

// SideQueue is a per-side price-time-priority container. It pairs a
// binary heap of index entries with an id->Order map so cancelled
// orders can be dropped lazily instead of paying for an O(n) heap
// removal on every cancel. Ported from
// original_source/src/engine/order_queues.rs onto the
// container/heap idiom the teacher uses in internal/book.
type SideQueue[A comparable] struct {
	side       OrderSide
	h          *indexHeap
	orders     map[uint64]Order[A]
	staleOps   int
	maxStalled int
}

// NewSideQueue builds an empty queue for the given side. maxStalled
// bounds how many cancels accumulate before the heap is compacted;
// capacityHint pre-sizes the backing storage.
func NewSideQueue[A comparable](side OrderSide, maxStalled, capacityHint int) *SideQueue[A] {
	cmp := bidPriority
	if side == Ask {
		cmp = askPriority
	}
	h := &indexHeap{entries: make([]indexEntry, 0, capacityHint), less: cmp}
	heap.Init(h)
	return &SideQueue[A]{
		side:       side,
		h:          h,
		orders:     make(map[uint64]Order[A], capacityHint),
		maxStalled: maxStalled,
	}
}

// Peek returns the highest-priority live order without removing it,
// discarding any stale heap entries it finds along the way.
func (q *SideQueue[A]) Peek() (Order[A], bool) {
	for q.h.Len() > 0 {
		top := q.h.entries[0]
		if o, ok := q.orders[top.id]; ok {
			return o, true
		}
		heap.Pop(q.h)
	}
	var zero Order[A]
	return zero, false
}

// Pop removes and returns the highest-priority live order.
func (q *SideQueue[A]) Pop() (Order[A], bool) {
	for q.h.Len() > 0 {
		top := heap.Pop(q.h).(indexEntry)
		if o, ok := q.orders[top.id]; ok {
			delete(q.orders, top.id)
			return o, true
		}
	}
	var zero Order[A]
	return zero, false
}

// Get looks up a live order by id without affecting heap or priority.
func (q *SideQueue[A]) Get(id uint64) (Order[A], bool) {
	o, ok := q.orders[id]
	return o, ok
}

// Insert adds a new resting order. Returns false if id is already
// live (duplicate insert).
func (q *SideQueue[A]) Insert(id uint64, price float64, ts int64, order Order[A]) bool {
	if _, exists := q.orders[id]; exists {
		return false
	}
	heap.Push(q.h, indexEntry{id: id, price: price, ts: ts})
	q.orders[id] = order
	return true
}

// Amend replaces a live order's record and repositions it in the
// heap under its new price/ts, preserving id and side. Full rebuild,
// as spec §9 allows.
func (q *SideQueue[A]) Amend(id uint64, price float64, ts int64, order Order[A]) bool {
	if _, exists := q.orders[id]; !exists {
		return false
	}
	q.orders[id] = order

	filtered := q.h.entries[:0:0]
	for _, e := range q.h.entries {
		if e.id != id {
			filtered = append(filtered, e)
		}
	}
	filtered = append(filtered, indexEntry{id: id, price: price, ts: ts})
	q.h.entries = filtered
	heap.Init(q.h)
	return true
}

// Cancel removes a live order from the map. The heap entry is left in
// place for lazy deletion; once more than maxStalled cancels have
// accrued since the last compaction, the heap is rebuilt to drop
// dangling entries.
func (q *SideQueue[A]) Cancel(id uint64) bool {
	if _, exists := q.orders[id]; !exists {
		return false
	}
	delete(q.orders, id)

	q.staleOps++
	if q.staleOps > q.maxStalled {
		q.compact()
		q.staleOps = 0
	}
	return true
}

// ModifyTopInPlace replaces the current top order's record without
// touching the heap. The caller guarantees price and ts are unchanged
// (only Qty moves), so heap order remains valid.
func (q *SideQueue[A]) ModifyTopInPlace(order Order[A]) {
	if q.h.Len() == 0 {
		return
	}
	top := q.h.entries[0]
	q.orders[top.id] = order
}

// compact rebuilds the heap, retaining only entries whose id is still
// live in the orders map.
func (q *SideQueue[A]) compact() {
	filtered := q.h.entries[:0:0]
	for _, e := range q.h.entries {
		if _, ok := q.orders[e.id]; ok {
			filtered = append(filtered, e)
		}
	}
	q.h.entries = filtered
	heap.Init(q.h)
}

// Len reports the number of live resting orders.
func (q *SideQueue[A]) Len() int { return len(q.orders) }
