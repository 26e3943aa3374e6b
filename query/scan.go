package query

import (
	"fmt"
	"sort"

	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/errs"
	"github.com/ziwon/fx-store-poc/record"
	"github.com/ziwon/fx-store-poc/symtab"
)

// Options configures one Scan call.
type Options struct {
	Predicate Predicate     // zero value matches everything
	Limit     int           // <= 0 means unbounded
	Cancel    <-chan struct{} // optional; checked at day-boundary granularity
}

// Scan resolves (symbolID, [tLo, tHi)) against m, inflating each matching
// day's block through its cache, trimming to the requested range, and
// applying opts.Predicate — spec.md §4.6's five-step execution.
//
// An empty or nonexistent symbol, or tLo >= tHi, yields an empty result
// rather than an error. A corrupt block terminates the scan immediately
// and reports which (symbol_id, day) failed (spec.md §7) rather than
// skipping it silently.
func Scan(m *symtab.Map, codecOpts compress.Options, symbolID uint16, tLo, tHi uint64, opts Options) ([]record.Record, error) {
	if tLo >= tHi {
		return nil, nil
	}

	dayLo := record.DayOf(tLo)
	dayHi := record.DayOf(tHi - 1)

	handles := m.IterDays(symbolID, dayLo, dayHi)
	if len(handles) == 0 {
		return nil, nil
	}

	result := make([]record.Record, 0, len(handles))

	for _, dh := range handles {
		if cancelled(opts.Cancel) {
			return result, errs.ErrCancelled
		}

		wasCold := !dh.Handle.Inflated()
		records, err := dh.Handle.Inflate(codecOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: symbol_id=%d day=%d: %v", errs.ErrCodecError, symbolID, dh.Day, err)
		}
		if wasCold {
			m.RecordCacheFill(symbolID)
		}

		lo, hi := trimRange(records, tLo, tHi, dh.Day, dayLo, dayHi)
		if lo >= hi {
			continue
		}

		remain := remaining(opts.Limit, len(result))
		matches := Filter(records[lo:hi], opts.Predicate, remain)
		result = append(result, matches...)

		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}

	return result, nil
}

// trimRange returns the half-open [lo, hi) index bounds within records
// (sorted ascending by ts) that fall in [tLo, tHi). Only the first and
// last day of the scanned range need trimming; interior days always take
// the full slice (spec.md §4.6 step 3).
func trimRange(records []record.Record, tLo, tHi uint64, day, dayLo, dayHi record.Day) (int, int) {
	lo, hi := 0, len(records)
	if day == dayLo {
		lo = sort.Search(len(records), func(i int) bool { return records[i].TS >= tLo })
	}
	if day == dayHi {
		hi = sort.Search(len(records), func(i int) bool { return records[i].TS >= tHi })
	}
	return lo, hi
}

func cancelled(c <-chan struct{}) bool {
	if c == nil {
		return false
	}
	select {
	case <-c:
		return true
	default:
		return false
	}
}
