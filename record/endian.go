package record

import (
	"encoding/binary"
	"unsafe"
)

// engine is the byte order used for every on-wire record field. The
// compressed payload is always little-endian so it is portable across
// architectures (spec.md §4.1); on a big-endian host the fields are
// byte-swapped on the way in and out.
var engine binary.ByteOrder = binary.LittleEndian

// checkNativeEndianness uses a fixed bit pattern to determine the host's
// byte order, the same trick mebo's endian package uses rather than
// runtime.GOARCH string matching.
func checkNativeEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

var isNativeBigEndian = checkNativeEndianness() == binary.BigEndian

// IsNativeBigEndian reports whether the running host is big-endian. The
// wire format itself never varies by host; this is exposed for
// diagnostics and for any future unsafe-cast fast path.
func IsNativeBigEndian() bool {
	return isNativeBigEndian
}
