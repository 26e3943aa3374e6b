package query

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ziwon/fx-store-poc/record"
)

func randomRecords(n int, seed int64) []record.Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]record.Record, n)
	for i := range out {
		price := 100000 + uint32(rng.Intn(100000))
		out[i] = record.Record{
			TS:     uint64(i),
			Open:   price,
			High:   price + 10,
			Low:    price - 10,
			Close:  price + uint32(rng.Intn(21)) - 10,
			Volume: uint32(rng.Intn(2000)),
		}
	}
	return out
}

// TestFilter_ScalarAndBatchedAgree is spec.md §8 property 6 and scenario
// S4: the SIMD (batched) and scalar paths must produce identical result
// sets for any input slice and predicate.
func TestFilter_ScalarAndBatchedAgree(t *testing.T) {
	records := randomRecords(10000, 42)
	pred := Predicate{
		Close:  NewBound(125000, 150000),
		Volume: NewBound(500, 1<<32-1),
	}

	scalar := FilterScalar(records, pred, 0)
	batched := FilterBatched(records, pred, 0)

	require.Equal(t, scalar, batched)
}

func TestFilter_ScalarAndBatchedAgree_NonMultipleOfGroupSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 15, 16, 17, 1003} {
		records := randomRecords(n, int64(n))
		pred := Predicate{Volume: NewBound(0, 1000)}

		require.Equal(t, FilterScalar(records, pred, 0), FilterBatched(records, pred, 0), "n=%d", n)
	}
}

func TestFilter_RespectsLimit(t *testing.T) {
	records := randomRecords(1000, 7)
	var pred Predicate // matches everything

	scalar := FilterScalar(records, pred, 10)
	batched := FilterBatched(records, pred, 10)

	require.Len(t, scalar, 10)
	require.Equal(t, scalar, batched)
}

func TestFilter_PreservesOrder(t *testing.T) {
	records := randomRecords(500, 3)
	var pred Predicate

	out := Filter(records, pred, 0)
	for i := 1; i < len(out); i++ {
		require.Less(t, out[i-1].TS, out[i].TS)
	}
}
