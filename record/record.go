// Package record defines the 40-byte fixed-width OHLCV record, its
// packed little-endian byte-view, and the fixed-point price/day-key
// helpers every other package builds on.
package record

import (
	"fmt"

	"github.com/ziwon/fx-store-poc/errs"
)

// Size is the fixed width of a record's byte-view. Enforced at compile
// time below per spec.md §9's "Cache-line record size" note.
const Size = 40

// encodedWidth is the sum of the field widths AppendTo actually writes:
// TS(8) + Open(4) + High(4) + Low(4) + Close(4) + Volume(4) + SymbolID(2).
// The remainder up to Size is zero-padding (see AppendTo).
const encodedWidth = 8 + 4 + 4 + 4 + 4 + 4 + 2

// Compile-time size assertion: an array type with a negative length is a
// compile error, so this only builds if encodedWidth fits within Size.
// Record's in-memory Go layout is not 40 bytes (struct field padding
// differs from the packed byte-view), so the invariant is checked against
// the wire width AppendTo/Parse use, not via unsafe.Sizeof(Record{}).
var _ [Size - encodedWidth]byte

// Record is one OHLCV bar for a single symbol and nanosecond timestamp.
// Open/High/Low/Close are fixed-point at Scale; Volume is a raw unsigned
// count.
type Record struct {
	TS       uint64 // epoch nanoseconds, UTC
	Open     uint32
	High     uint32
	Low      uint32
	Close    uint32
	Volume   uint32
	SymbolID uint16
}

// Day returns the UTC day key this record belongs to.
func (r Record) Day() Day {
	return DayOf(r.TS)
}

// Validate checks the OHLC ordering invariant from spec.md §3:
// low <= min(open, close) <= max(open, close) <= high.
func (r Record) Validate() error {
	lo := r.Open
	if r.Close < lo {
		lo = r.Close
	}
	hi := r.Open
	if r.Close > hi {
		hi = r.Close
	}
	if r.Low > lo || hi > r.High {
		return fmt.Errorf("%w: ohlc ordering violated (low=%d open=%d close=%d high=%d)",
			errs.ErrValueOutOfRange, r.Low, r.Open, r.Close, r.High)
	}
	return nil
}

// Bytes serializes r into a freshly allocated Size-byte little-endian
// byte-view, swapping multi-byte fields on a big-endian host so the
// on-wire representation stays portable (spec.md §4.1).
func (r Record) Bytes() []byte {
	b := make([]byte, Size)
	r.AppendTo(b)
	return b
}

// AppendTo writes r's byte-view into dst[:Size], which must have length
// at least Size. It returns dst for chaining. Used by the block codec to
// serialize many records into one buffer without a per-record
// allocation.
func (r Record) AppendTo(dst []byte) []byte {
	_ = dst[Size-1] // bounds check hint

	// engine is fixed to binary.LittleEndian, which is host-independent:
	// no branch on isNativeBigEndian is needed here. It exists (see
	// endian.go) for the day a hot path wants an unsafe native-order cast
	// instead, the way mebo's header Parse/Bytes do for their int64
	// field — that optimization isn't warranted at 40 bytes/record.
	engine.PutUint64(dst[0:8], r.TS)
	engine.PutUint32(dst[8:12], r.Open)
	engine.PutUint32(dst[12:16], r.High)
	engine.PutUint32(dst[16:20], r.Low)
	engine.PutUint32(dst[20:24], r.Close)
	engine.PutUint32(dst[24:28], r.Volume)
	engine.PutUint16(dst[28:30], r.SymbolID)
	clear(dst[encodedWidth:Size])

	return dst
}

// Parse decodes a Size-byte little-endian byte-view into r.
func (r *Record) Parse(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidRecordSize, len(data), Size)
	}

	r.TS = engine.Uint64(data[0:8])
	r.Open = engine.Uint32(data[8:12])
	r.High = engine.Uint32(data[12:16])
	r.Low = engine.Uint32(data[16:20])
	r.Close = engine.Uint32(data[20:24])
	r.Volume = engine.Uint32(data[24:28])
	r.SymbolID = engine.Uint16(data[28:30])

	return nil
}

// FromBytes parses a Size-byte byte-view into a new Record.
func FromBytes(data []byte) (Record, error) {
	var r Record
	if err := r.Parse(data); err != nil {
		return Record{}, err
	}
	return r, nil
}
