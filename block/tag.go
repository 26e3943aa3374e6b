// Package block implements the compressed day-block codec and its lazy,
// single-flight decompression cache (spec.md §4.2, §4.7).
package block

import (
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
)

// Tag is the metadata tuple that accompanies a compressed block payload:
// everything a decoder (or an external persistence collaborator, per
// spec.md §6) needs to invert the encode pipeline without additional
// context.
type Tag struct {
	SymbolID        uint16
	Day             record.Day
	RecordCount     int
	UncompressedLen int
	Codec           format.CompressionType
	CodecLevel      int
	Checksum        uint64
}
