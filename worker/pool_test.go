package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ziwon/fx-store-poc/block"
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
)

type fakeInstaller struct {
	mu       sync.Mutex
	installs []record.Day
	dropped  int
}

func (f *fakeInstaller) InstallBlock(symbolID uint16, day record.Day, h *block.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, day)
}

func (f *fakeInstaller) RecordDroppedBatch(symbolID uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped++
}

func sampleBatch(symbolID uint16, day record.Day, n int) Batch {
	start := day.Start()
	records := make([]record.Record, n)
	for i := 0; i < n; i++ {
		records[i] = record.Record{TS: start + uint64(i)*60*1e9, SymbolID: symbolID}
	}
	return Batch{SymbolID: symbolID, Day: day, Records: records}
}

func TestPool_EncodesAndInstalls(t *testing.T) {
	inst := &fakeInstaller{}
	p := New(Config{Threads: 2, Capacity: 4, Codec: format.CompressionLZ4, Installer: inst})
	defer p.Close()

	p.Submit(sampleBatch(1, 20230101, 10))
	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Len(t, inst.installs, 1)
	require.Equal(t, record.Day(20230101), inst.installs[0])
}

func TestPool_EmptyBatchIsDroppedNotInstalled(t *testing.T) {
	inst := &fakeInstaller{}
	p := New(Config{Threads: 1, Capacity: 4, Codec: format.CompressionLZ4, Installer: inst})
	defer p.Close()

	p.Submit(Batch{SymbolID: 1, Day: 20230101, Records: nil})
	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Empty(t, inst.installs)
	require.Equal(t, 1, inst.dropped)
}

func TestPool_TrySubmitBackpressure(t *testing.T) {
	block1 := make(chan struct{})
	inst := &blockingInstaller{release: block1}
	p := New(Config{Threads: 1, Capacity: 1, Codec: format.CompressionLZ4, Installer: inst})
	defer func() {
		close(block1)
		p.Close()
	}()

	// First submit occupies the single worker (blocked in InstallBlock).
	require.NoError(t, p.TrySubmit(sampleBatch(1, 20230101, 10)))
	// Give the worker a moment to dequeue the first batch into flight.
	time.Sleep(20 * time.Millisecond)

	// Second fills the one-slot queue.
	require.NoError(t, p.TrySubmit(sampleBatch(1, 20230102, 10)))
	// Third should see Backpressure: one in flight, one queued, queue full.
	err := p.TrySubmit(sampleBatch(1, 20230103, 10))
	require.Error(t, err)
}

type blockingInstaller struct {
	release chan struct{}
	once    sync.Once
}

func (b *blockingInstaller) InstallBlock(symbolID uint16, day record.Day, h *block.Handle) {
	b.once.Do(func() { <-b.release })
}

func (b *blockingInstaller) RecordDroppedBatch(symbolID uint16) {}

func TestPool_PanicRecoveryRespawns(t *testing.T) {
	var calls atomic.Int64
	inst := &panicOnceInstaller{calls: &calls}
	p := New(Config{Threads: 1, Capacity: 4, Codec: format.CompressionLZ4, Installer: inst})
	defer p.Close()

	p.Submit(sampleBatch(1, 20230101, 10)) // panics in InstallBlock
	p.Submit(sampleBatch(1, 20230102, 10)) // must still be processed by the replacement worker
	p.Flush()

	require.Equal(t, int64(2), calls.Load())
}

type panicOnceInstaller struct {
	calls *atomic.Int64
	once  sync.Once
}

func (p *panicOnceInstaller) InstallBlock(symbolID uint16, day record.Day, h *block.Handle) {
	p.calls.Add(1)
	p.once.Do(func() { panic("boom") })
}

func (p *panicOnceInstaller) RecordDroppedBatch(symbolID uint16) {}
