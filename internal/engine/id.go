package engine

// IDGenerator mints monotonically advancing order identifiers within
// an inclusive [min, max] range, wrapping to min after max.
//
// Ported from original_source/src/engine/sequence.rs, but follows
// spec.md §4.1's return-then-advance contract rather than the Rust
// source's advance-then-return one: Mint returns the current value,
// then advances.
type IDGenerator struct {
	min, max, next uint64
}

// NewIDGenerator constructs a generator with Mint's first return value
// equal to min.
func NewIDGenerator(min, max uint64) *IDGenerator {
	return &IDGenerator{min: min, max: max, next: min}
}

// Mint returns the next id in sequence and advances the internal
// cursor, wrapping to min once max has been issued.
func (g *IDGenerator) Mint() uint64 {
	id := g.next
	if g.next < g.max {
		g.next++
	} else {
		g.next = g.min
	}
	return id
}
