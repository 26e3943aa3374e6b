//go:build nobuild

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress is the cgo-backed alternative to zstd_pure.go, kept for
// reference but never built: the portable pure-Go path is the only one
// wired into the default build.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(c.Dict) > 0 {
		cdict, err := gozstd.NewCDict(c.Dict)
		if err != nil {
			return nil, err
		}
		defer cdict.Release()
		return gozstd.CompressDict(nil, data, cdict), nil
	}
	return gozstd.CompressLevel(nil, data, int(c.Level)), nil
}

func (c ZstdCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if len(c.Dict) > 0 {
		ddict, err := gozstd.NewDDict(c.Dict)
		if err != nil {
			return nil, err
		}
		defer ddict.Release()
		return gozstd.DecompressDict(nil, data, ddict)
	}
	return gozstd.Decompress(nil, data)
}
