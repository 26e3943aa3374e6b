package block

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/record"
)

// cacheState is the decompression cache's state machine (spec.md §4.7):
// Empty (compressed bytes present, cache cold), Inflating (a single reader
// is decoding), Filled (cache hot).
type cacheState uint8

const (
	cacheEmpty cacheState = iota
	cacheInflating
	cacheFilled
)

// Handle is a shared, reference-counted wrapper over a compressed block
// payload plus its lazily-populated decompression cache (spec.md §3). A
// Handle is installed into the symbol/day map and shared immutably by
// queries; its interior mutation is limited to the cache slot (the
// single-flight promotion from Empty to Filled, and Evict's return from
// Filled to Empty) and the advisory last-access timestamp.
type Handle struct {
	Compressed Compressed

	mu     sync.Mutex
	state  cacheState
	done   chan struct{} // closed when an in-flight Inflating decode completes
	cached []record.Record
	err    error

	lastAccessNano atomic.Int64 // advisory, read by the LRU eviction loop
}

// NewHandle wraps a compressed block in a cold handle.
func NewHandle(c Compressed) *Handle {
	return &Handle{Compressed: c}
}

// Tag returns the handle's block tag.
func (h *Handle) Tag() Tag {
	return h.Compressed.Tag
}

// Inflate returns the handle's decoded records, decoding at most once
// regardless of how many concurrent callers race to inflate the same cold
// handle (spec.md §4.2's single-flight requirement and §4.7's state
// machine). The returned slice is shared across all callers and must not
// be mutated.
func (h *Handle) Inflate(opts compress.Options) ([]record.Record, error) {
	h.lastAccessNano.Store(time.Now().UnixNano())

	h.mu.Lock()
	switch h.state {
	case cacheFilled:
		cached, err := h.cached, h.err
		h.mu.Unlock()
		return cached, err
	case cacheInflating:
		done := h.done
		h.mu.Unlock()
		<-done
		h.mu.Lock()
		cached, err := h.cached, h.err
		h.mu.Unlock()
		return cached, err
	default: // cacheEmpty: this caller wins the single-flight race
		h.state = cacheInflating
		h.done = make(chan struct{})
		h.mu.Unlock()
	}

	records, err := Decode(h.Compressed, opts)

	h.mu.Lock()
	h.cached, h.err = records, err
	h.state = cacheFilled
	close(h.done)
	h.mu.Unlock()

	return records, err
}

// Inflated reports whether the cache is currently Filled, without
// triggering a decode. Advisory only — used by LRU eviction bookkeeping.
func (h *Handle) Inflated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == cacheFilled
}

// LastAccessNano returns the UnixNano timestamp of the most recent
// Inflate call, or 0 if the handle has never been inflated. Used by the
// optional LRU eviction loop (spec.md §5).
func (h *Handle) LastAccessNano() int64 {
	return h.lastAccessNano.Load()
}

// InflatedBytes returns the size in bytes of the currently cached
// decoded records, or 0 if the cache is cold.
func (h *Handle) InflatedBytes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != cacheFilled {
		return 0
	}
	return len(h.cached) * record.Size
}

// Evict drops the cached inflated buffer, returning the handle to Empty.
// Safe to call while other goroutines hold a reference to this handle's
// previously-returned inflated slice: Go's GC keeps that slice alive for
// as long as the caller references it, independent of the handle's own
// state (spec.md §5's "must never drop a handle while readers reference
// it" — readers reference the slice, not the cache slot).
func (h *Handle) Evict() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == cacheFilled {
		h.cached = nil
		h.err = nil
		h.state = cacheEmpty
	}
}
