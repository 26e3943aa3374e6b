package compress

import "github.com/klauspost/compress/s2"

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor. It takes no options: S2 has
// no level or dictionary setting here.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression. S2 frames
// are self-describing, so expectedSize is only used to preallocate the
// destination when given.
func (c S2Compressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var dst []byte
	if expectedSize > 0 {
		dst = make([]byte, 0, expectedSize)
	}
	return s2.Decode(dst, data)
}
