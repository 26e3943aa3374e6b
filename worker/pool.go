// Package worker implements the bounded compression queue and the fixed
// pool of goroutines that drain it (spec.md §4.5): ingest hands off
// sealed day batches here so encode cost never blocks the caller beyond
// the configured backpressure policy.
package worker

import (
	"sync"

	"github.com/ziwon/fx-store-poc/block"
	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/errs"
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
)

// Logger is the minimal logging surface the pool uses to report dropped
// batches (spec.md §4.5/§7). Modeled on the nil-checked Logger field seen
// on the pack's queue runner Config; a nil Logger disables logging
// entirely rather than requiring a no-op stub.
type Logger interface {
	Errorf(format string, args ...any)
}

// Batch is one sealed (symbol_id, day) accumulation handed to the pool
// for encoding.
type Batch struct {
	SymbolID uint16
	Day      record.Day
	Records  []record.Record
}

// Installer receives a successfully encoded handle. The symtab.Map
// satisfies this with its InstallBlock method; kept as an interface here
// so the worker package does not import symtab (avoiding a dependency
// cycle, since symtab has no need to know about the worker pool).
type Installer interface {
	InstallBlock(symbolID uint16, day record.Day, h *block.Handle)
	RecordDroppedBatch(symbolID uint16)
}

// Config configures Pool construction.
type Config struct {
	Threads   int // worker goroutine count, >= 1
	Capacity  int // queue capacity, >= Threads
	Codec     format.CompressionType
	CodecOpts compress.Options
	Installer Installer
	Logger    Logger // optional, nil disables logging
}

// Pool is a fixed-size goroutine pool draining a bounded batch queue.
// Workers encode each batch (block.Encode) and install the resulting
// handle via Installer. A panicking worker is replaced by a fresh
// goroutine holding the same queue channel, per spec.md §4.5.
type Pool struct {
	cfg   Config
	queue chan Batch

	workers sync.WaitGroup // tracks live worker goroutines, for Close
	pending sync.WaitGroup // tracks submitted-but-not-yet-installed batches, for Flush

	closeOnce sync.Once
}

// New starts a Pool with cfg.Threads workers reading from a channel of
// capacity cfg.Capacity.
func New(cfg Config) *Pool {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Capacity < cfg.Threads {
		cfg.Capacity = cfg.Threads
	}

	p := &Pool{
		cfg:   cfg,
		queue: make(chan Batch, cfg.Capacity),
	}

	for i := 0; i < cfg.Threads; i++ {
		p.workers.Add(1)
		go p.runWorker()
	}

	return p
}

// TrySubmit enqueues a batch without blocking, returning
// errs.ErrBackpressure if the queue is full — the reject backpressure
// policy (spec.md §4.5/§6).
func (p *Pool) TrySubmit(b Batch) error {
	p.pending.Add(1)
	select {
	case p.queue <- b:
		return nil
	default:
		p.pending.Done()
		return errs.ErrBackpressure
	}
}

// Submit enqueues a batch, blocking the caller while the queue is full —
// the default block backpressure policy (spec.md §4.5/§6).
func (p *Pool) Submit(b Batch) {
	p.pending.Add(1)
	p.queue <- b
}

// Close stops accepting new batches, drains the queue, then waits for
// every worker to finish and exit — spec.md §4.5's "producers are closed
// first, the queue is drained, then workers join."
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.workers.Wait()
}

// Flush blocks until every batch submitted before this call has been
// encoded and installed (spec.md §4.4). Batches submitted concurrently
// with Flush from another goroutine are not guaranteed to be covered.
func (p *Pool) Flush() {
	p.pending.Wait()
}

// runWorker is one worker goroutine's loop. A batch that panics during
// processing takes this goroutine down (after spawning its replacement)
// rather than recovering in place and continuing, matching spec.md
// §4.5's "panicking worker is replaced by a fresh thread with the same
// queue handle" literally instead of merely swallowing the panic.
func (p *Pool) runWorker() {
	defer p.workers.Done()
	for b := range p.queue {
		if ok := p.process(b); !ok {
			p.workers.Add(1)
			go p.runWorker()
			return
		}
	}
}

func (p *Pool) process(b Batch) (ok bool) {
	defer func() {
		p.pending.Done()
		if r := recover(); r != nil {
			if p.cfg.Logger != nil {
				p.cfg.Logger.Errorf("worker: recovered panic processing batch symbol=%d day=%d: %v", b.SymbolID, b.Day, r)
			}
			if p.cfg.Installer != nil {
				p.cfg.Installer.RecordDroppedBatch(b.SymbolID)
			}
			ok = false
		}
	}()

	compressed, err := block.Encode(b.Records, p.cfg.Codec, p.cfg.CodecOpts)
	if err != nil {
		if p.cfg.Logger != nil {
			p.cfg.Logger.Errorf("worker: dropping batch symbol=%d day=%d: %v", b.SymbolID, b.Day, err)
		}
		if p.cfg.Installer != nil {
			p.cfg.Installer.RecordDroppedBatch(b.SymbolID)
		}
		return true
	}

	h := block.NewHandle(compressed)
	p.cfg.Installer.InstallBlock(b.SymbolID, b.Day, h)
	return true
}
