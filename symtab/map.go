// Package symtab implements the two-level concurrent symbol/day map
// (spec.md §4.3): an outer shard set keyed by symbol_id localizes churn
// to a single inner shard per symbol, and each symbol owns its own
// day-keyed map of block handles plus advisory stats.
package symtab

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ziwon/fx-store-poc/block"
	"github.com/ziwon/fx-store-poc/record"
)

// shardCount is the outer shard fan-out. Headroom over the nShards=16
// sharding constant seen in the pack's qrpike-unitdb reference; 32 gives
// more headroom for the wider symbol_id space (uint16 vs that store's
// smaller keyspace) without meaningfully increasing per-shard lock
// contention risk.
const shardCount = 32

// Stats are the advisory, non-transactional per-symbol counters spec.md
// §4.3/§9 calls for. Updated with relaxed atomics; readers may observe a
// torn snapshot across fields, which is acceptable for admin/monitoring
// use.
type Stats struct {
	Records         uint64
	MinTS           uint64
	MaxTS           uint64
	BytesCompressed uint64
	BytesInflated   uint64
	CacheFills      uint64
	DroppedBatches  uint64
}

// symbolEntry is one symbol's day->handle map plus its stats, per
// spec.md §3's "Symbol entry."
type symbolEntry struct {
	mu   sync.RWMutex
	days map[record.Day]*block.Handle

	records         atomic.Uint64
	minTS           atomic.Uint64
	maxTS           atomic.Uint64
	bytesCompressed atomic.Uint64
	bytesInflated   atomic.Uint64
	cacheFills      atomic.Uint64
	droppedBatches  atomic.Uint64
}

func newSymbolEntry() *symbolEntry {
	return &symbolEntry{days: make(map[record.Day]*block.Handle)}
}

func (e *symbolEntry) snapshot() Stats {
	return Stats{
		Records:         e.records.Load(),
		MinTS:           e.minTS.Load(),
		MaxTS:           e.maxTS.Load(),
		BytesCompressed: e.bytesCompressed.Load(),
		BytesInflated:   e.bytesInflated.Load(),
		CacheFills:      e.cacheFills.Load(),
		DroppedBatches:  e.droppedBatches.Load(),
	}
}

// shard is one outer-level bucket: a lock guarding a map of symbol_id to
// symbolEntry. Writers to distinct shards never serialize with each
// other (spec.md §4.3).
type shard struct {
	mu      sync.RWMutex
	symbols map[uint16]*symbolEntry
}

// Map is the two-level concurrent symbol/day map.
type Map struct {
	shards [shardCount]*shard
}

// New creates an empty Map.
func New() *Map {
	m := &Map{}
	for i := range m.shards {
		m.shards[i] = &shard{symbols: make(map[uint16]*symbolEntry)}
	}
	return m
}

func (m *Map) shardFor(symbolID uint16) *shard {
	return m.shards[symbolID%shardCount]
}

// entry returns the symbolEntry for symbolID, creating it if create is
// true and it does not yet exist.
func (m *Map) entry(symbolID uint16, create bool) *symbolEntry {
	sh := m.shardFor(symbolID)

	sh.mu.RLock()
	e, ok := sh.symbols[symbolID]
	sh.mu.RUnlock()
	if ok || !create {
		return e
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok = sh.symbols[symbolID]; ok {
		return e
	}
	e = newSymbolEntry()
	sh.symbols[symbolID] = e
	return e
}

// GetBlock returns the handle for (symbolID, day), or nil if absent. The
// read path is lock-free past shard selection aside from the inner
// RWMutex's read lock.
func (m *Map) GetBlock(symbolID uint16, day record.Day) *block.Handle {
	e := m.entry(symbolID, false)
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.days[day]
}

// InstallBlock atomically inserts or replaces the handle for
// (symbolID, day). Replacement is last-writer-wins by wall-clock order of
// installation (spec.md §4.3): whichever call to InstallBlock executes
// last under the entry's lock wins, regardless of the content or
// encode-start time of either batch. Outstanding readers of a replaced
// handle keep their own reference and see the old inflated bytes until
// they release it — the map swap never touches an already-returned
// handle.
func (m *Map) InstallBlock(symbolID uint16, day record.Day, h *block.Handle) {
	e := m.entry(symbolID, true)

	e.mu.Lock()
	e.days[day] = h
	e.mu.Unlock()

	tag := h.Tag()
	e.records.Add(uint64(tag.RecordCount))
	e.bytesCompressed.Add(uint64(len(h.Compressed.Payload)))
	e.bytesInflated.Add(uint64(tag.UncompressedLen))
	if lo := tag.Day.Start(); e.minTS.Load() == 0 || lo < e.minTS.Load() {
		e.minTS.Store(lo)
	}
	if hi := tag.Day.End(); hi > e.maxTS.Load() {
		e.maxTS.Store(hi)
	}
}

// RecordCacheFill increments the cache-fill counter for symbolID,
// advisory bookkeeping called by the query path after a cold handle is
// inflated.
func (m *Map) RecordCacheFill(symbolID uint16) {
	if e := m.entry(symbolID, false); e != nil {
		e.cacheFills.Add(1)
	}
}

// RecordDroppedBatch increments the dropped-batch counter for symbolID
// (spec.md §4.5/§7: a codec error on a batch drops it and increments a
// counter).
func (m *Map) RecordDroppedBatch(symbolID uint16) {
	e := m.entry(symbolID, true)
	e.droppedBatches.Add(1)
}

// DayHandle pairs a day key with its handle, the element type
// IterDays returns.
type DayHandle struct {
	Day    record.Day
	Handle *block.Handle
}

// IterDays returns an ascending-by-day ordered snapshot of handles for
// symbolID within [dLo, dHi] inclusive. The day-key set is snapshotted at
// call time (spec.md §4.3): handles installed concurrently during
// iteration are not guaranteed to appear, but any handle this call
// returns is a consistent reference at the moment it was read.
func (m *Map) IterDays(symbolID uint16, dLo, dHi record.Day) []DayHandle {
	e := m.entry(symbolID, false)
	if e == nil {
		return nil
	}

	e.mu.RLock()
	out := make([]DayHandle, 0, len(e.days))
	for d, h := range e.days {
		if d < dLo || d > dHi {
			continue
		}
		out = append(out, DayHandle{Day: d, Handle: h})
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// DropSymbol removes the entire inner map for symbolID (spec.md §4.3).
// This is cooperative with a grace period (SPEC_FULL.md open-question
// resolution #1): new lookups miss immediately, but a Handle a reader
// already obtained before the drop remains valid for as long as that
// reader holds it — Go's garbage collector, not this map, owns that
// lifetime once the reference has left InstallBlock/GetBlock/IterDays.
func (m *Map) DropSymbol(symbolID uint16) {
	sh := m.shardFor(symbolID)
	sh.mu.Lock()
	delete(sh.symbols, symbolID)
	sh.mu.Unlock()
}

// Stats returns the advisory counters for symbolID, or the zero value if
// the symbol has no entry.
func (m *Map) Stats(symbolID uint16) Stats {
	e := m.entry(symbolID, false)
	if e == nil {
		return Stats{}
	}
	return e.snapshot()
}

// AllSymbols returns every symbol_id currently present, for aggregate
// stats() calls with no symbol filter.
func (m *Map) AllSymbols() []uint16 {
	var out []uint16
	for _, sh := range m.shards {
		sh.mu.RLock()
		for id := range sh.symbols {
			out = append(out, id)
		}
		sh.mu.RUnlock()
	}
	return out
}

// HandleRef pairs a handle with the (symbol_id, day) it is installed
// under, for callers that need to walk every live handle (the LRU
// eviction loop).
type HandleRef struct {
	SymbolID uint16
	Day      record.Day
	Handle   *block.Handle
}

// AllHandles returns every handle currently installed across every
// symbol, snapshotted at call time the same way IterDays snapshots one
// symbol's day set.
func (m *Map) AllHandles() []HandleRef {
	var out []HandleRef
	for _, sh := range m.shards {
		sh.mu.RLock()
		for symbolID, e := range sh.symbols {
			e.mu.RLock()
			for day, h := range e.days {
				out = append(out, HandleRef{SymbolID: symbolID, Day: day, Handle: h})
			}
			e.mu.RUnlock()
		}
		sh.mu.RUnlock()
	}
	return out
}
