package compress

import "github.com/klauspost/compress/zstd"

// ZstdCompressor trades encode time for the best compression ratio among
// the available codecs. Level maps onto zstd's named speed/ratio presets;
// Dict optionally primes the encoder and decoder with a shared preset
// dictionary (spec.md's codec_dictionary), which matters most for the
// small per-day payloads this store produces.
type ZstdCompressor struct {
	Level zstd.EncoderLevel
	Dict  []byte
}

var _ Codec = ZstdCompressor{}

// NewZstdCompressor creates a Zstd compressor at the given level with an
// optional dictionary. level is clamped into zstd's encoder level range.
func NewZstdCompressor(level int, dict []byte) ZstdCompressor {
	return ZstdCompressor{
		Level: zstdLevelFromInt(level),
		Dict:  dict,
	}
}

// zstdLevelFromInt maps the codec.Options.Level scale (1-9, spec.md
// default 3) onto zstd's named encoder levels.
func zstdLevelFromInt(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 6:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
