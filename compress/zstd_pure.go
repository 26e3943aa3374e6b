//go:build !cgo

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compress compresses the input data using Zstandard at c.Level, primed
// with c.Dict when set.
//
// The encoder is not pooled: Level and Dict vary per codec instance
// (block.Encode and block.Decode build a fresh one via CreateCodec on
// every call), so pooling would need a pool-per-(level,dict) keyspace for
// no measurable benefit at per-day-block call rates.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(c.Level),
		zstd.WithEncoderCRC(false),
	}
	if len(c.Dict) > 0 {
		opts = append(opts, zstd.WithEncoderDict(c.Dict))
	}

	encoder, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstd: new encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// Decompress reverses Compress, threading the same dictionary through the
// decoder. expectedSize is used to preallocate the destination buffer.
func (c ZstdCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	}
	if len(c.Dict) > 0 {
		opts = append(opts, zstd.WithDecoderDicts(c.Dict))
	}

	decoder, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstd: new decoder: %w", err)
	}
	defer decoder.Close()

	var dst []byte
	if expectedSize > 0 {
		dst = make([]byte, 0, expectedSize)
	}

	decompressed, err := decoder.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
