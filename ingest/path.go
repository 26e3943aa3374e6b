package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/ziwon/fx-store-poc/errs"
	"github.com/ziwon/fx-store-poc/record"
	"github.com/ziwon/fx-store-poc/worker"
)

// Config configures a Path's accumulator batching policy (spec.md §4.4,
// §6).
type Config struct {
	AccMaxRecords      int           // default 2048
	AccMaxAge          time.Duration // default 1s
	BackpressureReject bool          // false (default) = block on a full queue
}

// DefaultConfig returns spec.md §4.4's default accumulator thresholds.
func DefaultConfig() Config {
	return Config{
		AccMaxRecords: 2048,
		AccMaxAge:     time.Second,
	}
}

// Path is the public ingest surface: AppendRecord/AppendDay/Flush. It
// buckets records by (symbol_id, day) into per-symbol accumulators and
// routes sealed batches to a worker.Pool.
type Path struct {
	cfg  Config
	pool *worker.Pool

	mu   sync.Mutex
	accs map[uint16]*accumulator
}

// New creates a Path over an already-running worker.Pool.
func New(cfg Config, pool *worker.Pool) *Path {
	if cfg.AccMaxRecords <= 0 {
		cfg.AccMaxRecords = DefaultConfig().AccMaxRecords
	}
	return &Path{
		cfg:  cfg,
		pool: pool,
		accs: make(map[uint16]*accumulator),
	}
}

// AppendRecord routes rec to the live accumulator for its
// (symbol_id, day). If the accumulator's day differs from rec's, the
// current accumulator is sealed and enqueued first (spec.md §4.4) — an
// out-of-order append across days for the same symbol is permitted but
// costs a re-encode of the older day's now-reopened accumulator. Reaching
// AccMaxRecords or AccMaxAge also seals without waiting for a day
// boundary.
func (p *Path) AppendRecord(rec record.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	day := rec.Day()
	symbolID := rec.SymbolID

	var dayChangeSeal, capSeal *accumulator

	p.mu.Lock()
	acc, ok := p.accs[symbolID]
	switch {
	case !ok:
		acc = newAccumulator(day, p.cfg.AccMaxRecords)
		p.accs[symbolID] = acc
	case acc.day != day:
		dayChangeSeal = acc
		acc = newAccumulator(day, p.cfg.AccMaxRecords)
		p.accs[symbolID] = acc
	}

	acc.records = append(acc.records, rec)

	if reason := acc.full(p.cfg.AccMaxRecords, p.cfg.AccMaxAge); reason != sealNone {
		capSeal = acc
		p.accs[symbolID] = newAccumulator(day, p.cfg.AccMaxRecords)
	}
	p.mu.Unlock()

	if dayChangeSeal != nil {
		if err := p.submit(symbolID, dayChangeSeal); err != nil {
			return err
		}
	}
	if capSeal != nil {
		if err := p.submit(symbolID, capSeal); err != nil {
			return err
		}
	}

	return nil
}

// AppendDay bypasses the accumulator and enqueues records directly as a
// single batch for (symbolID, day) — spec.md §4.4. Every record must
// belong to symbolID and day; mismatches fail with errs.ErrMixedBatch
// before anything is enqueued.
func (p *Path) AppendDay(symbolID uint16, day record.Day, records []record.Record) error {
	if len(records) == 0 {
		return errs.ErrEmptyBatch
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if r.SymbolID != symbolID || r.Day() != day {
			return fmt.Errorf("%w: record %d has symbol_id=%d day=%d, want symbol_id=%d day=%d",
				errs.ErrMixedBatch, i, r.SymbolID, r.Day(), symbolID, day)
		}
	}

	cp := make([]record.Record, len(records))
	copy(cp, records)
	return p.submit(symbolID, &accumulator{day: day, records: cp})
}

// submit hands a sealed accumulator to the worker pool, honoring the
// configured backpressure policy.
func (p *Path) submit(symbolID uint16, acc *accumulator) error {
	if len(acc.records) == 0 {
		return nil
	}
	b := worker.Batch{SymbolID: symbolID, Day: acc.day, Records: acc.records}
	if p.cfg.BackpressureReject {
		return p.pool.TrySubmit(b)
	}
	p.pool.Submit(b)
	return nil
}

// Flush seals every open accumulator and blocks until the queue is
// drained and all in-flight encodes are installed (spec.md §4.4). Flush
// always blocks to enqueue the final seals regardless of the configured
// backpressure policy — a caller asking for a guaranteed drain should
// never see Backpressure from the flush itself.
func (p *Path) Flush() {
	p.mu.Lock()
	open := p.accs
	p.accs = make(map[uint16]*accumulator)
	p.mu.Unlock()

	for symbolID, acc := range open {
		if len(acc.records) == 0 {
			continue
		}
		p.pool.Submit(worker.Batch{SymbolID: symbolID, Day: acc.day, Records: acc.records})
	}

	p.pool.Flush()
}
