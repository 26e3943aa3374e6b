package ingest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ziwon/fx-store-poc/block"
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
	"github.com/ziwon/fx-store-poc/worker"
)

type recordingInstaller struct {
	mu    sync.Mutex
	batch map[record.Day]int // day -> record count installed (last wins in this fake)
}

func newRecordingInstaller() *recordingInstaller {
	return &recordingInstaller{batch: make(map[record.Day]int)}
}

func (r *recordingInstaller) InstallBlock(symbolID uint16, day record.Day, h *block.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batch[day] = h.Tag().RecordCount
}

func (r *recordingInstaller) RecordDroppedBatch(symbolID uint16) {}

func newTestPath(t *testing.T, cfg Config) (*Path, *recordingInstaller, *worker.Pool) {
	t.Helper()
	inst := newRecordingInstaller()
	pool := worker.New(worker.Config{Threads: 2, Capacity: 8, Codec: format.CompressionLZ4, Installer: inst})
	t.Cleanup(pool.Close)
	return New(cfg, pool), inst, pool
}

func sampleRecord(symbolID uint16, ts uint64) record.Record {
	return record.Record{TS: ts, SymbolID: symbolID, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
}

func TestPath_AppendRecord_SealsOnDayChange(t *testing.T) {
	p, inst, _ := newTestPath(t, DefaultConfig())

	day1 := record.Day(20230101)
	day2 := record.Day(20230102)

	require.NoError(t, p.AppendRecord(sampleRecord(1, day1.Start())))
	require.NoError(t, p.AppendRecord(sampleRecord(1, day2.Start()))) // seals day1

	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Equal(t, 1, inst.batch[day1])
	require.Equal(t, 1, inst.batch[day2])
}

func TestPath_AppendRecord_SealsOnMaxRecords(t *testing.T) {
	cfg := Config{AccMaxRecords: 4, AccMaxAge: time.Hour}
	p, inst, _ := newTestPath(t, cfg)

	day := record.Day(20230101)
	for i := 0; i < 4; i++ {
		require.NoError(t, p.AppendRecord(sampleRecord(1, day.Start()+uint64(i)*1e9)))
	}
	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Equal(t, 4, inst.batch[day])
}

func TestPath_AppendRecord_ValidatesOHLC(t *testing.T) {
	p, _, _ := newTestPath(t, DefaultConfig())

	bad := sampleRecord(1, 1)
	bad.High = 0
	bad.Low = 100 // low > high: invalid
	err := p.AppendRecord(bad)
	require.Error(t, err)
}

func TestPath_AppendDay_Direct(t *testing.T) {
	p, inst, _ := newTestPath(t, DefaultConfig())

	day := record.Day(20230101)
	records := []record.Record{sampleRecord(1, day.Start()), sampleRecord(1, day.Start()+1e9)}
	require.NoError(t, p.AppendDay(1, day, records))
	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Equal(t, 2, inst.batch[day])
}

func TestPath_AppendDay_RejectsMismatchedSymbolOrDay(t *testing.T) {
	p, _, _ := newTestPath(t, DefaultConfig())

	day := record.Day(20230101)
	records := []record.Record{sampleRecord(1, day.Start()), sampleRecord(2, day.Start())}
	err := p.AppendDay(1, day, records)
	require.Error(t, err)
}

func TestPath_Flush_DrainsOpenAccumulator(t *testing.T) {
	p, inst, _ := newTestPath(t, DefaultConfig())

	day := record.Day(20230101)
	require.NoError(t, p.AppendRecord(sampleRecord(1, day.Start())))
	p.Flush()

	inst.mu.Lock()
	defer inst.mu.Unlock()
	require.Equal(t, 1, inst.batch[day])
}
