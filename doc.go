// Package barstore provides a single-node storage engine for OHLCV
// (Open/High/Low/Close/Volume) bars keyed by symbol and nanosecond
// timestamp, built for foreign-exchange tick/bar workloads.
//
// Records are ingested through AppendRecord/AppendDay, accumulated per
// (symbol_id, day), and compressed in the background by a fixed worker
// pool into immutable blocks held in a two-level concurrent symbol/day
// map. Scan resolves a time range to a list of blocks, inflates them
// through a single-flight decompression cache, and applies an optional
// vectorized predicate.
//
// # Basic usage
//
//	store := barstore.New(config.Default())
//	defer store.Close()
//
//	store.AppendRecord(record.Record{
//	    TS:       uint64(time.Now().UnixNano()),
//	    SymbolID: 1,
//	    Open:     encodedOpen,
//	    High:     encodedHigh,
//	    Low:      encodedLow,
//	    Close:    encodedClose,
//	    Volume:   100,
//	})
//	store.Flush()
//
//	bars, _ := store.Scan(1, tLo, tHi, query.Options{})
package barstore
