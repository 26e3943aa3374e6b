package compress

import "github.com/cespare/xxhash/v2"

// Checksum returns the xxhash64 digest of a compressed block payload. The
// block package stores this in the block tag and verifies it before
// running the codec on decode, catching truncation or bit-rot that a
// codec's own format checks might not (NoOp in particular has none).
func Checksum(compressed []byte) uint64 {
	return xxhash.Sum64(compressed)
}

// VerifyChecksum reports whether compressed hashes to want.
func VerifyChecksum(compressed []byte, want uint64) bool {
	return Checksum(compressed) == want
}
