// Package collections provides generic data structures shared across the
// engine: a compact bitset and a few allocation-friendly containers.
package collections

import "math/bits"

// Bitset is a memory-efficient boolean set using one bit per element. The
// invariant auditor marks visited slab slots with it; a map-based visited
// set would cost two orders of magnitude more memory on large cubes.
type Bitset struct {
	words []uint64
	size  int
}

// NewBitset creates a bitset sized for the given number of elements.
func NewBitset(size int) *Bitset {
	if size <= 0 {
		size = 64
	}
	return &Bitset{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets the bit at index i, growing the set if needed.
func (b *Bitset) Set(i int) {
	if i < 0 {
		return
	}
	if w := i / 64; w >= len(b.words) {
		b.grow(i + 1)
	}
	b.words[i/64] |= 1 << (i % 64)
	if i >= b.size {
		b.size = i + 1
	}
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i int) {
	if i < 0 || i/64 >= len(b.words) {
		return
	}
	b.words[i/64] &^= 1 << (i % 64)
}

// Test reports whether the bit at index i is set.
func (b *Bitset) Test(i int) bool {
	if i < 0 || i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<(i%64)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Size returns the logical size of the bitset.
func (b *Bitset) Size() int {
	return b.size
}

// ClearAll clears every bit.
func (b *Bitset) ClearAll() {
	for i := range b.words {
		b.words[i] = 0
	}
}

func (b *Bitset) grow(newSize int) {
	need := (newSize + 63) / 64
	if need <= len(b.words) {
		return
	}
	cap := len(b.words) * 2
	if cap < need {
		cap = need
	}
	words := make([]uint64, cap)
	copy(words, b.words)
	b.words = words
}
