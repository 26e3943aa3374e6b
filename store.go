package barstore

import (
	"sync/atomic"
	"time"

	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/config"
	"github.com/ziwon/fx-store-poc/errs"
	"github.com/ziwon/fx-store-poc/ingest"
	"github.com/ziwon/fx-store-poc/query"
	"github.com/ziwon/fx-store-poc/record"
	"github.com/ziwon/fx-store-poc/symtab"
	"github.com/ziwon/fx-store-poc/worker"
)

// Store is a value type: everything it needs is held in its own fields,
// with no global mutable singleton (spec.md §5, §9's "No global state").
// Multiple Stores may coexist in the same process for clean test
// harnesses or multi-tenant embedding.
type Store struct {
	cfg       config.Config
	codecOpts compress.Options

	symbols *symtab.Map
	pool    *worker.Pool
	ingest  *ingest.Path
	logger  worker.Logger

	eviction *evictionLoop

	closed atomic.Bool
}

// Option customizes Store construction beyond config.Config.
type Option func(*Store)

// WithLogger installs an optional logger for the compression worker
// pool's dropped-batch path (spec.md §4.5/§7). Nil (the default) disables
// logging entirely.
func WithLogger(l worker.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEvictionInterval overrides how often the inflated-bytes cap is
// enforced, when config.InflatedCapBytes > 0. Has no effect otherwise.
func WithEvictionInterval(d time.Duration) Option {
	return func(s *Store) {
		if s.eviction != nil {
			s.eviction.interval = d
		}
	}
}

// New constructs a running Store: the compression worker pool starts
// immediately, and if cfg.InflatedCapBytes > 0 the LRU eviction loop
// starts alongside it. Call Close to shut everything down.
func New(cfg config.Config, opts ...Option) *Store {
	if cfg.WorkerThreads <= 0 {
		cfg.WorkerThreads = config.Default().WorkerThreads
	}
	if cfg.QueueCapacity < cfg.WorkerThreads {
		cfg.QueueCapacity = cfg.WorkerThreads
	}
	if cfg.AccMaxRecords <= 0 {
		cfg.AccMaxRecords = config.Default().AccMaxRecords
	}
	if cfg.Codec == 0 {
		cfg.Codec = config.Default().Codec
	}
	if cfg.CodecLevel <= 0 {
		cfg.CodecLevel = config.Default().CodecLevel
	}

	s := &Store{
		cfg:       cfg,
		codecOpts: compress.Options{Level: cfg.CodecLevel, Dictionary: cfg.CodecDictionary},
		symbols:   symtab.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pool = worker.New(worker.Config{
		Threads:   cfg.WorkerThreads,
		Capacity:  cfg.QueueCapacity,
		Codec:     cfg.Codec,
		CodecOpts: s.codecOpts,
		Installer: s.symbols,
		Logger:    s.logger,
	})

	s.ingest = ingest.New(ingest.Config{
		AccMaxRecords:      cfg.AccMaxRecords,
		AccMaxAge:          cfg.AccMaxAge,
		BackpressureReject: cfg.BackpressurePolicy == config.BackpressureReject,
	}, s.pool)

	if cfg.InflatedCapBytes > 0 {
		s.eviction = newEvictionLoop(s, cfg.InflatedCapBytes, 0)
	}
	for _, opt := range opts {
		opt(s) // re-apply so WithEvictionInterval can see the now-constructed loop
	}
	if s.eviction != nil {
		go s.eviction.run()
	}

	return s
}

// AppendRecord routes rec through the ingest accumulator (spec.md §4.4,
// §6). Returns errs.ErrValueOutOfRange for an invalid record,
// errs.ErrBackpressure under the reject policy with a full queue, or
// errs.ErrStoreClosed if called after Close.
func (s *Store) AppendRecord(rec record.Record) error {
	if s.closed.Load() {
		return errs.ErrStoreClosed
	}
	return s.ingest.AppendRecord(rec)
}

// AppendDay enqueues records as a single batch for (symbolID, day),
// bypassing the live accumulator (spec.md §4.4, §6). Returns
// errs.ErrStoreClosed if called after Close.
func (s *Store) AppendDay(symbolID uint16, day record.Day, records []record.Record) error {
	if s.closed.Load() {
		return errs.ErrStoreClosed
	}
	return s.ingest.AppendDay(symbolID, day, records)
}

// Flush waits until the ingest queue is drained and every in-flight
// encode has been installed (spec.md §4.4, §6). Returns
// errs.ErrStoreClosed if called after Close.
func (s *Store) Flush() error {
	if s.closed.Load() {
		return errs.ErrStoreClosed
	}
	s.ingest.Flush()
	return nil
}

// Scan resolves a (symbol, [tLo, tHi)) range query, optionally filtered
// by opts.Predicate and bounded by opts.Limit (spec.md §4.6, §6). Returns
// errs.ErrStoreClosed if called after Close.
func (s *Store) Scan(symbolID uint16, tLo, tHi uint64, opts query.Options) ([]record.Record, error) {
	if s.closed.Load() {
		return nil, errs.ErrStoreClosed
	}
	return query.Scan(s.symbols, s.codecOpts, symbolID, tLo, tHi, opts)
}

// DropSymbol removes symbolID's entire day map (spec.md §4.3, §6).
// Cooperative with a grace period: in-flight readers holding a handle
// obtained before the drop keep it valid until they are done with it.
func (s *Store) DropSymbol(symbolID uint16) {
	s.symbols.DropSymbol(symbolID)
}

// Stats returns the advisory counters for a single symbol (spec.md §6).
func (s *Store) Stats(symbolID uint16) symtab.Stats {
	return s.symbols.Stats(symbolID)
}

// AllStats returns the advisory counters for every symbol currently
// present, keyed by symbol_id — the symbol-less form of spec.md §6's
// stats(symbol_id?) call.
func (s *Store) AllStats() map[uint16]symtab.Stats {
	ids := s.symbols.AllSymbols()
	out := make(map[uint16]symtab.Stats, len(ids))
	for _, id := range ids {
		out[id] = s.symbols.Stats(id)
	}
	return out
}

// Close flushes outstanding ingest, stops the eviction loop if running,
// and shuts down the compression worker pool. A Store must not be used
// after Close returns; subsequent AppendRecord/AppendDay/Flush/Scan calls
// return errs.ErrStoreClosed instead of reaching the closed worker queue.
// Close is idempotent: calls after the first are a no-op.
func (s *Store) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.ingest.Flush()
	if s.eviction != nil {
		s.eviction.Stop()
	}
	s.pool.Close()
}
