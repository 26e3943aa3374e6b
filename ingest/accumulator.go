// Package ingest implements the per-symbol live accumulator and the
// public append/flush surface that buckets incoming records by
// (symbol_id, day) and routes sealed batches to the compression worker
// pool (spec.md §4.4).
package ingest

import (
	"time"

	"github.com/ziwon/fx-store-poc/record"
)

// accumulator is the live, not-yet-sealed buffer for one symbol's
// currently-open day, grouping "records buffered so far" with "when this
// day was first opened" the way a small encoder-state struct tracks
// offset-and-length bookkeeping for one in-progress encode.
type accumulator struct {
	day     record.Day
	records []record.Record
	opened  time.Time
}

func newAccumulator(day record.Day, cap int) *accumulator {
	return &accumulator{
		day:     day,
		records: make([]record.Record, 0, cap),
		opened:  time.Now(),
	}
}

// sealReason names why an accumulator is due to be sealed, as reported by
// full. AppendRecord only distinguishes sealNone from the other values.
type sealReason uint8

const (
	sealNone sealReason = iota
	sealDayChange
	sealMaxRecords
	sealMaxAge
	sealExplicit
)

// full reports whether acc has reached the configured record or
// wall-time cap (spec.md §4.4's batching policy).
func (a *accumulator) full(maxRecords int, maxAge time.Duration) sealReason {
	if len(a.records) >= maxRecords {
		return sealMaxRecords
	}
	if maxAge > 0 && time.Since(a.opened) >= maxAge {
		return sealMaxAge
	}
	return sealNone
}
