package block

import (
	"fmt"
	"slices"

	"github.com/ziwon/fx-store-poc/compress"
	"github.com/ziwon/fx-store-poc/errs"
	"github.com/ziwon/fx-store-poc/format"
	"github.com/ziwon/fx-store-poc/record"
)

// Compressed is the on-wire form of a block: a Tag plus the compressed
// record payload it describes.
type Compressed struct {
	Tag     Tag
	Payload []byte
}

// Canonicalize sorts records ascending by ts (stable) and deduplicates
// equal timestamps, keeping the last occurrence — spec.md §3's
// "canonicalize" operation, required both before encode and as the
// round-trip target: decode(encode(xs)) == canonicalize(xs).
func Canonicalize(records []record.Record) []record.Record {
	if len(records) == 0 {
		return records
	}

	slices.SortStableFunc(records, func(a, b record.Record) int {
		switch {
		case a.TS < b.TS:
			return -1
		case a.TS > b.TS:
			return 1
		default:
			return 0
		}
	})

	out := records[:0:0]
	for i, r := range records {
		if i+1 < len(records) && records[i+1].TS == r.TS {
			continue // a later record with the same ts supersedes this one
		}
		out = append(out, r)
	}

	return out
}

// Encode runs spec.md §4.2's fixed encoding pipeline: validate a single
// (symbol_id, day), canonicalize, serialize to a packed little-endian
// byte image, then compress. records is not mutated in place beyond the
// sort Canonicalize performs; callers that need the original order
// preserved should pass a copy.
func Encode(records []record.Record, codecType format.CompressionType, opts compress.Options) (Compressed, error) {
	if len(records) == 0 {
		return Compressed{}, errs.ErrEmptyBatch
	}

	symbolID := records[0].SymbolID
	day := records[0].Day()
	for _, r := range records {
		if r.SymbolID != symbolID || r.Day() != day {
			return Compressed{}, fmt.Errorf("%w: want symbol_id=%d day=%d", errs.ErrMixedBatch, symbolID, day)
		}
	}

	canon := Canonicalize(records)
	raw := serialize(canon)

	codec, err := compress.CreateCodec(codecType, opts)
	if err != nil {
		return Compressed{}, err
	}

	payload, err := codec.Compress(raw)
	if err != nil {
		return Compressed{}, fmt.Errorf("%w: %v", errs.ErrCodecError, err)
	}

	return Compressed{
		Tag: Tag{
			SymbolID:        symbolID,
			Day:             day,
			RecordCount:     len(canon),
			UncompressedLen: len(raw),
			Codec:           codecType,
			CodecLevel:      opts.Level,
			Checksum:        compress.Checksum(payload),
		},
		Payload: payload,
	}, nil
}

// serialize packs records into their N*record.Size little-endian byte
// image, in order, with no length prefix (the tag carries length).
func serialize(records []record.Record) []byte {
	raw := make([]byte, len(records)*record.Size)
	for i, r := range records {
		r.AppendTo(raw[i*record.Size : (i+1)*record.Size])
	}
	return raw
}

// Decode inverts Encode: verify the checksum, decompress, then parse the
// packed byte image back into records. Fails with errs.ErrChecksumMismatch,
// errs.ErrUnknownCodec, or errs.ErrCodecError (wrapping the underlying
// decompression failure or a length mismatch) per spec.md §4.2.
func Decode(c Compressed, opts compress.Options) ([]record.Record, error) {
	if !c.Tag.Codec.Valid() {
		return nil, fmt.Errorf("%w: codec id %d", errs.ErrUnknownCodec, c.Tag.Codec)
	}
	if !compress.VerifyChecksum(c.Payload, c.Tag.Checksum) {
		return nil, errs.ErrChecksumMismatch
	}

	codec, err := compress.CreateCodec(c.Tag.Codec, opts)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(c.Payload, c.Tag.UncompressedLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCodecError, err)
	}
	if len(raw) != c.Tag.UncompressedLen {
		return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", errs.ErrCodecError, len(raw), c.Tag.UncompressedLen)
	}
	if len(raw)%record.Size != 0 {
		return nil, fmt.Errorf("%w: payload length %d not a multiple of record size", errs.ErrCodecError, len(raw))
	}

	n := len(raw) / record.Size
	records := make([]record.Record, n)
	for i := range records {
		if err := records[i].Parse(raw[i*record.Size : (i+1)*record.Size]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", errs.ErrCodecError, i, err)
		}
		if i > 0 && records[i].TS < records[i-1].TS {
			// The checksum already verified above, so a decoded payload
			// that isn't ascending by ts means Encode wrote an
			// uncanonicalized block, not that this payload was
			// corrupted in flight — a programming error in the encode
			// path, not a data condition callers can recover from
			// (spec.md §7's Internal kind).
			errs.Internal(fmt.Sprintf("block payload not canonicalized: record %d ts=%d < record %d ts=%d", i, records[i].TS, i-1, records[i-1].TS))
		}
	}

	return records, nil
}
