// Package compress provides the block-payload compression codecs used by
// the block package: None, LZ4 (default), Zstd, and S2. All codecs operate
// on a single block's packed little-endian record payload (spec.md §4.2
// step 2) — a flat byte slice, never columnar data.
package compress

import (
	"fmt"

	"github.com/ziwon/fx-store-poc/format"
)

// Compressor compresses a block payload and returns a newly allocated
// result. The input slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor. expectedSize is the uncompressed
// length recorded in the block tag; a value of 0 means unknown. Codecs
// that cannot self-describe their output length (LZ4's raw block format)
// use expectedSize to allocate an exact destination buffer instead of
// guessing and growing. Implementations return an error on truncated or
// malformed input; the caller (block.Decode) wraps it as a CodecError.
type Decompressor interface {
	Decompress(data []byte, expectedSize int) ([]byte, error)
}

// Codec combines compression and decompression for one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// Options configures codec construction.
//
// Level is algorithm-specific compression effort; spec.md §4.2 default is
// DefaultLevel. Dictionary optionally primes the codec for higher ratio on
// short payloads (spec.md's codec_dictionary); nil disables it.
type Options struct {
	Level      int
	Dictionary []byte
}

// DefaultLevel is the default compression effort (spec.md §4.2).
const DefaultLevel = 3

// CreateCodec builds a Codec for the given compression type.
//
// A zero Options.Level is normalized to DefaultLevel.
func CreateCodec(compressionType format.CompressionType, opts Options) (Codec, error) {
	if opts.Level <= 0 {
		opts.Level = DefaultLevel
	}

	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(opts.Level, opts.Dictionary), nil
	case format.CompressionZstd:
		return NewZstdCompressor(opts.Level, opts.Dictionary), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: invalid compression type: %s", compressionType)
	}
}
