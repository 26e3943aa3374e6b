package record

import (
	"fmt"
	"math"

	"github.com/ziwon/fx-store-poc/errs"
)

// Scale is the fixed-point scale factor for OHLC price fields (spec.md
// §4.1): encoded = round(price * Scale).
const Scale = 100000

// MaxPrice is the largest price representable at Scale within a uint32.
const MaxPrice = float64(math.MaxUint32) / Scale

// EncodePrice converts a floating-point price into its fixed-point
// uint32 representation using round-half-away-from-zero. Negative,
// non-finite, or out-of-range inputs fail with errs.ErrValueOutOfRange.
func EncodePrice(price float64) (uint32, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price %v is not finite", errs.ErrValueOutOfRange, price)
	}
	if price < 0 {
		return 0, fmt.Errorf("%w: price %v is negative", errs.ErrValueOutOfRange, price)
	}
	if price > MaxPrice {
		return 0, fmt.Errorf("%w: price %v exceeds maximum representable value %v", errs.ErrValueOutOfRange, price, MaxPrice)
	}

	return uint32(math.Round(price * Scale)), nil
}

// DecodePrice is the exact inverse of EncodePrice for values it produced.
func DecodePrice(encoded uint32) float64 {
	return float64(encoded) / Scale
}

// EncodeVolume validates a volume count fits the record's u32 field.
// Volume has no scale; it is a raw unsigned count.
func EncodeVolume(volume float64) (uint32, error) {
	if math.IsNaN(volume) || math.IsInf(volume, 0) {
		return 0, fmt.Errorf("%w: volume %v is not finite", errs.ErrValueOutOfRange, volume)
	}
	if volume < 0 || volume > float64(math.MaxUint32) {
		return 0, fmt.Errorf("%w: volume %v out of range", errs.ErrValueOutOfRange, volume)
	}

	return uint32(math.Round(volume)), nil
}
