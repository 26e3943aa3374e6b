package query

import (
	"golang.org/x/sys/cpu"

	"github.com/ziwon/fx-store-poc/record"
)

// groupSize mirrors spec.md §4.6's "groups of 8 records at a time over
// 256-bit lanes": eight 4-byte fields per 256-bit register width. The
// batched path below is pure Go — there is no assembly backing it in
// this build — but it preserves the group-of-8/mask/expand shape a real
// vectorized implementation would use, so the two paths stay structurally
// close and are required to agree exactly (spec.md §8 property 6).
const groupSize = 8

// hasVectorSupport is detected once at package init via
// golang.org/x/sys/cpu, per SPEC_FULL.md's open-question resolution
// (runtime detection, not a build tag). It gates which path Filter uses
// by default; both FilterScalar and FilterBatched remain directly
// callable for tests that need to compare them.
var hasVectorSupport = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// Filter applies p to records, appending matches (up to limit, <= 0
// meaning unbounded) in order to a freshly allocated slice. It dispatches
// to the batched or scalar path based on runtime CPU feature detection;
// both paths are required to, and do, produce identical results.
func Filter(records []record.Record, p Predicate, limit int) []record.Record {
	if hasVectorSupport {
		return FilterBatched(records, p, limit)
	}
	return FilterScalar(records, p, limit)
}

// FilterScalar is the reference, always-available predicate path: one
// record at a time, no batching.
func FilterScalar(records []record.Record, p Predicate, limit int) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterBatched processes records in groups of groupSize, computing an
// 8-bit match mask per group and expanding set bits into the output, then
// falls back to FilterScalar for any trailing partial group. This is the
// "SIMD path" of spec.md §4.6: a mask-then-expand shape, pure Go.
func FilterBatched(records []record.Record, p Predicate, limit int) []record.Record {
	out := make([]record.Record, 0, len(records))
	n := len(records)
	full := n - n%groupSize

	for base := 0; base < full; base += groupSize {
		if limit > 0 && len(out) >= limit {
			return out
		}
		group := records[base : base+groupSize]
		var mask uint8
		for i, r := range group {
			if p.Match(r) {
				mask |= 1 << uint(i)
			}
		}
		for i := 0; i < groupSize; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, group[i])
		}
	}

	if full < n && (limit <= 0 || len(out) < limit) {
		tail := FilterScalar(records[full:], p, remaining(limit, len(out)))
		out = append(out, tail...)
	}

	return out
}

// remaining computes how many more results a bounded scan may still
// accept; limit <= 0 means unbounded.
func remaining(limit, have int) int {
	if limit <= 0 {
		return 0
	}
	left := limit - have
	if left < 0 {
		return 0
	}
	return left
}
