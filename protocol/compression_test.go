package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":   {},
		"zeros":   make([]byte, 1024),
		"pattern": bytes.Repeat([]byte{0xaa, 0x55, 0x0f}, 2000),
		"full":    bytes.Repeat([]byte{0xff}, MaxDecompressedSize),
	}

	for _, code := range CompressionCodes {
		for name, input := range inputs {
			t.Run(code.String()+"/"+name, func(t *testing.T) {
				compressed, err := Compress(code, input)
				require.NoError(t, err)

				out, err := Decompress(code, compressed)
				require.NoError(t, err)
				assert.Equal(t, len(input), len(out))
				assert.True(t, bytes.Equal(input, out))
			})
		}
	}
}

func TestDecompressTruncated(t *testing.T) {
	input := bytes.Repeat([]byte("display"), 500)

	for _, code := range []CompressionCode{Bzip2, Zlib, Lzma, Zstd} {
		t.Run(code.String(), func(t *testing.T) {
			compressed, err := Compress(code, input)
			require.NoError(t, err)

			_, err = Decompress(code, compressed[:len(compressed)/2])
			require.ErrorIs(t, err, ErrDecompressionFailed)
			require.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}

func TestDecompressGarbage(t *testing.T) {
	for _, code := range []CompressionCode{Bzip2, Zlib, Lzma, Zstd} {
		_, err := Decompress(code, []byte("definitely not compressed"))
		require.ErrorIs(t, err, ErrDecompressionFailed, code.String())
	}
}

func TestDecompressTooLarge(t *testing.T) {
	compressed, err := Compress(Zlib, make([]byte, MaxDecompressedSize+1))
	require.NoError(t, err)

	_, err = Decompress(Zlib, compressed)
	require.ErrorIs(t, err, ErrDecompressionFailed)
}

func TestCompressUnknownCode(t *testing.T) {
	_, err := Compress(CompressionCode(7), []byte{1})
	require.ErrorIs(t, err, ErrMalformedPacket)

	_, err = Decompress(CompressionCode(7), []byte{1})
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestCompressionCodeValues(t *testing.T) {
	// wire values shared with the display firmware
	assert.Equal(t, uint16(0), uint16(Uncompressed))
	assert.Equal(t, uint16(25210), uint16(Bzip2))
	assert.Equal(t, uint16(26490), uint16(Zlib))
	assert.Equal(t, uint16(27770), uint16(Lzma))
	assert.Equal(t, uint16(31347), uint16(Zstd))

	for _, code := range CompressionCodes {
		assert.True(t, code.Valid())
		parsed, err := ParseCompressionName(code.String())
		require.NoError(t, err)
		assert.Equal(t, code, parsed)
	}

	assert.False(t, CompressionCode(1).Valid())
	assert.Equal(t, "unknown(0x0001)", CompressionCode(1).String())
}

func TestParseCompressionName(t *testing.T) {
	code, err := ParseCompressionName(" None ")
	require.NoError(t, err)
	assert.Equal(t, Uncompressed, code)

	_, err = ParseCompressionName("gzip")
	require.Error(t, err)
}
