package cube

// Summary is the constraint on cell payloads: a commutative monoid whose
// identity is the type's zero value. Plus must be associative and
// commutative and must not mutate its receiver.
type Summary[S any] interface {
	Plus(other S) S
	Equal(other S) bool
}

// Count is the canonical summary: an integer counter under addition.
type Count int64

// Plus returns the sum of the two counts.
func (c Count) Plus(other Count) Count {
	return c + other
}

// Minus returns the difference of the two counts. Counts form a group, which
// summed-area-table summaries built over them rely on.
func (c Count) Minus(other Count) Count {
	return c - other
}

// Equal reports whether the two counts are the same.
func (c Count) Equal(other Count) bool {
	return c == other
}

// SummaryPolicy receives the summaries a range query delivers.
type SummaryPolicy[S any] interface {
	Add(s S)
}

// CombinePolicy accumulates a running monoid total of delivered summaries.
type CombinePolicy[S Summary[S]] struct {
	Total S
}

// Add folds a summary into the running total.
func (p *CombinePolicy[S]) Add(s S) {
	p.Total = p.Total.Plus(s)
}
