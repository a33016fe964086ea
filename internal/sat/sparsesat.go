// Package sat implements a sparse summed-area table usable as a nanocube
// summary type: the cube's last dimension becomes a prefix-sum structure
// answering interval sums in logarithmic time instead of a binary
// refinement walk.
package sat

import "sort"

// Value is the element constraint: a commutative group, so running sums can
// be both composed and differenced. The zero value is the identity.
type Value[T any] interface {
	Plus(other T) T
	Minus(other T) T
	Equal(other T) bool
}

// Entry is one (key, running sum) pair. Keys are strictly increasing; Sum
// accumulates every value at keys up to and including Key.
type Entry[T Value[T]] struct {
	Key uint64
	Sum T
}

// SparseSAT is an ordered sparse summed-area table. The zero value is the
// empty table, which is the monoid identity, so SparseSAT satisfies the
// cube's summary contract and invariant checks apply to it unchanged.
type SparseSAT[T Value[T]] struct {
	entries []Entry[T]
}

// FromEntries builds a table directly from running-sum entries. Keys must be
// strictly increasing.
func FromEntries[T Value[T]](entries []Entry[T]) SparseSAT[T] {
	return SparseSAT[T]{entries: append([]Entry[T](nil), entries...)}
}

// Entries exposes the running-sum pairs for inspection.
func (s SparseSAT[T]) Entries() []Entry[T] {
	return s.entries
}

// Len returns the number of stored keys.
func (s SparseSAT[T]) Len() int {
	return len(s.entries)
}

// lowerBound returns the first index whose key is >= key.
func lowerBound[T Value[T]](entries []Entry[T], key uint64) int {
	return sort.Search(len(entries), func(i int) bool {
		return entries[i].Key >= key
	})
}

func addMutate[T Value[T]](entries []Entry[T], key uint64, val T) []Entry[T] {
	i := lowerBound(entries, key)
	switch {
	case i == len(entries):
		// past the end: push the accumulated value
		if i == 0 {
			return append(entries, Entry[T]{Key: key, Sum: val})
		}
		return append(entries, Entry[T]{Key: key, Sum: entries[i-1].Sum.Plus(val)})
	case entries[i].Key == key:
		// existing key: bump this suffix
	case i == 0:
		var zero T
		entries = append(entries, Entry[T]{})
		copy(entries[1:], entries)
		entries[0] = Entry[T]{Key: key, Sum: zero}
	default:
		entries = append(entries, Entry[T]{})
		copy(entries[i+1:], entries[i:])
		entries[i] = Entry[T]{Key: key, Sum: entries[i-1].Sum}
	}
	for j := i; j < len(entries); j++ {
		entries[j].Sum = entries[j].Sum.Plus(val)
	}
	return entries
}

// Add returns a new table with val accumulated at key; the receiver is
// unchanged.
func (s SparseSAT[T]) Add(key uint64, val T) SparseSAT[T] {
	cp := append([]Entry[T](nil), s.entries...)
	return SparseSAT[T]{entries: addMutate(cp, key, val)}
}

// AddMutate accumulates val at key in place.
func (s *SparseSAT[T]) AddMutate(key uint64, val T) {
	s.entries = addMutate(s.entries, key, val)
}

// prefix returns the running sum over all keys strictly below bound.
func (s SparseSAT[T]) prefix(bound uint64) T {
	var zero T
	i := lowerBound(s.entries, bound)
	if i == 0 {
		return zero
	}
	return s.entries[i-1].Sum
}

// Sum returns the accumulated value over keys in the half-open interval
// [lo, hi), resolving both bounds to the nearest enclosing known prefix.
func (s SparseSAT[T]) Sum(lo, hi uint64) T {
	return s.prefix(hi).Minus(s.prefix(lo))
}

// Plus composes two tables by replaying the right-hand side's deltas into a
// copy of the receiver. Associative and commutative, with the empty table as
// identity, so the monoid laws the cube depends on hold exactly.
func (s SparseSAT[T]) Plus(other SparseSAT[T]) SparseSAT[T] {
	if len(other.entries) == 0 {
		return SparseSAT[T]{entries: append([]Entry[T](nil), s.entries...)}
	}
	if len(s.entries) == 0 {
		return SparseSAT[T]{entries: append([]Entry[T](nil), other.entries...)}
	}
	out := append([]Entry[T](nil), s.entries...)
	out = addMutate(out, other.entries[0].Key, other.entries[0].Sum)
	for i := 1; i < len(other.entries); i++ {
		delta := other.entries[i].Sum.Minus(other.entries[i-1].Sum)
		out = addMutate(out, other.entries[i].Key, delta)
	}
	return SparseSAT[T]{entries: out}
}

// Equal reports whether both tables hold the same keys and running sums.
func (s SparseSAT[T]) Equal(other SparseSAT[T]) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if s.entries[i].Key != other.entries[i].Key ||
			!s.entries[i].Sum.Equal(other.entries[i].Sum) {
			return false
		}
	}
	return true
}
