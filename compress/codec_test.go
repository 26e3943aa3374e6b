package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziwon/fx-store-poc/format"
)

func barPayload(records int) []byte {
	data := make([]byte, records*40)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func getAllCodecs(t *testing.T) map[string]Codec {
	t.Helper()
	codecs := make(map[string]Codec)
	for name, ct := range map[string]format.CompressionType{
		"NoOp": format.CompressionNone,
		"LZ4":  format.CompressionLZ4,
		"S2":   format.CompressionS2,
		"Zstd": format.CompressionZstd,
	} {
		codec, err := CreateCodec(ct, Options{})
		require.NoError(t, err)
		codecs[name] = codec
	}
	return codecs
}

func TestCreateCodec_InvalidType(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0xFF), Options{})
	require.Error(t, err)
}

func TestCreateCodec_DefaultLevel(t *testing.T) {
	codec, err := CreateCodec(format.CompressionLZ4, Options{})
	require.NoError(t, err)
	lz4c, ok := codec.(LZ4Compressor)
	require.True(t, ok)
	require.Equal(t, lz4LevelFromInt(DefaultLevel), lz4c.Level)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs(t) {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil, 0)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		records int
	}{
		{"single_block_partial_day", 390},
		{"full_trading_day", 1440},
		{"max_block", 4096},
	}

	for codecName, codec := range getAllCodecs(t) {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					payload := barPayload(tc.records)

					compressed, err := codec.Compress(payload)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					decompressed, err := codec.Decompress(compressed, len(payload))
					require.NoError(t, err)
					require.Equal(t, payload, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_UnknownExpectedSize(t *testing.T) {
	// expectedSize of 0 must still round-trip (adaptive path for LZ4, normal
	// path for self-describing formats).
	for codecName, codec := range getAllCodecs(t) {
		t.Run(codecName, func(t *testing.T) {
			payload := barPayload(1440)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed, 0)
			require.NoError(t, err)
			require.Equal(t, payload, decompressed)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not a compressed block payload")},
	}

	for codecName, codec := range getAllCodecs(t) {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec does not validate data")
			}
			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data, 0)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	payload := barPayload(1440)

	for codecName, codec := range getAllCodecs(t) {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			done := make(chan error, numGoroutines)
			for range numGoroutines {
				go func() {
					decompressed, err := codec.Decompress(compressed, len(payload))
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(payload, decompressed) {
						done <- fmt.Errorf("decompressed payload mismatch")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}

func TestAllCodecs_InterfaceCompliance(t *testing.T) {
	for name, codec := range getAllCodecs(t) {
		t.Run(name, func(t *testing.T) {
			var _ Codec = codec
			require.NotNil(t, codec)
		})
	}
}

func TestLZ4Compressor_Dictionary(t *testing.T) {
	dict := bytes.Repeat([]byte("OHLCV-day-dictionary-seed"), 4)
	codec := NewLZ4Compressor(DefaultLevel, dict)

	payload := barPayload(390)
	compressed, err := codec.Compress(payload)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)

	// Decompressing without the dictionary must fail or produce garbage;
	// here we assert it does not silently succeed with the right bytes.
	plain := NewLZ4Compressor(DefaultLevel, nil)
	_, err = plain.Decompress(compressed, len(payload))
	require.Error(t, err)
}

func TestZstdCompressor_Dictionary(t *testing.T) {
	dict := bytes.Repeat([]byte("OHLCV-day-dictionary-seed"), 64)
	codec := NewZstdCompressor(DefaultLevel, dict)

	payload := barPayload(390)
	compressed, err := codec.Compress(payload)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func TestAllCodecs_ProgressiveDataSizes(t *testing.T) {
	recordCounts := []int{1, 10, 100, 390, 1440, 4096}

	for codecName, codec := range getAllCodecs(t) {
		t.Run(codecName, func(t *testing.T) {
			for _, n := range recordCounts {
				t.Run(fmt.Sprintf("%d_records", n), func(t *testing.T) {
					payload := barPayload(n)

					compressed, err := codec.Compress(payload)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed, len(payload))
					require.NoError(t, err)
					require.Equal(t, payload, decompressed)
				})
			}
		})
	}
}
