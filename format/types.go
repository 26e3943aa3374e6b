// Package format defines the small set of wire-level enums shared between
// the compress and block packages.
package format

// CompressionType identifies the codec used to compress a block's
// serialized record payload.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores the payload unmodified.
	CompressionLZ4  CompressionType = 0x2 // CompressionLZ4 is the default LZ-family codec (spec.md §4.2).
	CompressionZstd CompressionType = 0x3 // CompressionZstd trades encode time for a better ratio.
	CompressionS2   CompressionType = 0x4 // CompressionS2 is a Snappy-compatible, speed-oriented codec.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the recognized compression types.
func (c CompressionType) Valid() bool {
	switch c {
	case CompressionNone, CompressionLZ4, CompressionZstd, CompressionS2:
		return true
	default:
		return false
	}
}
