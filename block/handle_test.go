package block

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
)

// TestHandle_SingleFlight verifies spec.md §4.2's single-flight property
// indirectly: block.Decode has no injectable call counter, so instead
// every concurrent caller's returned slice header is compared by data
// pointer. If two callers decoded independently they would hold distinct
// backing arrays; single-flight guarantees they all observe the one
// array the winning decode produced.
func TestHandle_SingleFlight(t *testing.T) {
	records := sampleDay(1, 20230101, 1440)
	compressed, err := Encode(records, format.CompressionLZ4, compress.Options{})
	require.NoError(t, err)

	h := NewHandle(compressed)

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)

	ptrs := make([]uintptr, n)
	var errCount atomic.Int64
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			got, err := h.Inflate(compress.Options{})
			if err != nil {
				errCount.Add(1)
				return
			}
			ptrs[i] = dataPtr(got)
		}(i)
	}
	wg.Wait()

	require.Zero(t, errCount.Load())
	for i := 1; i < n; i++ {
		require.Equal(t, ptrs[0], ptrs[i], "all concurrent readers must observe the same decoded buffer")
	}
	require.True(t, h.Inflated())
}

func dataPtr(s []record.Record) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

func TestHandle_EvictThenReinflate(t *testing.T) {
	records := sampleDay(1, 20230101, 100)
	compressed, err := Encode(records, format.CompressionLZ4, compress.Options{})
	require.NoError(t, err)

	h := NewHandle(compressed)
	got, err := h.Inflate(compress.Options{})
	require.NoError(t, err)
	require.Equal(t, records, got)
	require.True(t, h.Inflated())

	h.Evict()
	require.False(t, h.Inflated())

	got2, err := h.Inflate(compress.Options{})
	require.NoError(t, err)
	require.Equal(t, records, got2)
}
