// Package compress provides the compression codecs used to shrink a
// block's serialized record payload before it is written into a symbol's
// day entry.
//
// # Overview
//
// A block is a run of fixed-width 40-byte records for one (symbol, day)
// pair, packed little-endian and handed to
// one of these codecs as a single flat byte slice. Compression is the
// only transformation applied; there is no separate encoding stage (no
// delta/Gorilla/varint pass) because OHLCV bars do not share the
// columnar layout that would make such a stage worthwhile.
//
// Four algorithms are supported:
//   - None: no compression (fastest, largest)
//   - LZ4: default codec (spec.md §4.2), fast, dictionary-capable
//   - Zstd: best compression ratio, dictionary-capable
//   - S2: Snappy-compatible, speed-oriented, no dictionary support
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, expectedSize int) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// expectedSize is the uncompressed length recorded in the block's tag
// (always known by the time a block is decoded); codecs whose wire format
// doesn't self-describe length (LZ4's raw block) use it to allocate an
// exact destination buffer instead of guessing and growing.
//
// # Dictionaries
//
// LZ4 and Zstd accept a preset dictionary (spec.md's codec_dictionary)
// trained on a representative day's worth of bars. A dictionary matters
// most here because a single day's block is small (typically 1440
// records, frequently far fewer for an illiquid symbol or a partial day), too
// small for either algorithm to build up its own internal compression
// context from scratch. S2's pinned version in this module exposes no
// practical preset-dictionary API, so it runs without one.
//
// # Selection
//
// LZ4 is the default per spec.md §4.2. Zstd is offered for
// storage-constrained deployments willing to trade CPU for ratio; S2 for
// workloads that want a speed/ratio balance without dictionary overhead;
// None for debugging or already-incompressible payloads.
//
// # Thread safety
//
// All codec values are safe to share across goroutines; compression calls
// allocate or borrow pooled state internally rather than mutating the
// receiver.
package compress
