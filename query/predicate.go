// Package query implements range-scan resolution and the SIMD/scalar
// predicate filter over inflated blocks (spec.md §4.6).
package query

import "github.com/ziwon/fx-store-poc/record"

// Bound is a closed [Lo, Hi] interval over a scaled integer field. A zero
// Bound (Set == false) means "no constraint on this field."
type Bound struct {
	Lo, Hi uint32
	Set    bool
}

// NewBound returns a Set Bound over [lo, hi].
func NewBound(lo, hi uint32) Bound {
	return Bound{Lo: lo, Hi: hi, Set: true}
}

func (b Bound) matches(v uint32) bool {
	if !b.Set {
		return true
	}
	return v >= b.Lo && v <= b.Hi
}

// Predicate is an AND of per-field closed-bound intervals — a structured
// value rather than an opaque closure (spec.md §4.6/§9), so the batched
// filter path can lower it to vector-style compares instead of calling
// back into user code per record.
type Predicate struct {
	Open, High, Low, Close, Volume Bound
}

// IsEmpty reports whether p constrains nothing, letting callers skip
// filtering entirely.
func (p Predicate) IsEmpty() bool {
	return !p.Open.Set && !p.High.Set && !p.Low.Set && !p.Close.Set && !p.Volume.Set
}

// Match reports whether r satisfies every set bound in p.
func (p Predicate) Match(r record.Record) bool {
	return p.Open.matches(r.Open) &&
		p.High.matches(r.High) &&
		p.Low.matches(r.Low) &&
		p.Close.matches(r.Close) &&
		p.Volume.matches(r.Volume)
}
