package protocol

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/pior/servicepoint/internal/bufpool"
)

// CompressionCode selects how a bitmap payload is compressed.
// The values are protocol constants shared with the display firmware.
type CompressionCode uint16

const (
	Uncompressed CompressionCode = 0x0000
	Bzip2        CompressionCode = 0x627a // "bz"
	Zlib         CompressionCode = 0x677a // "gz"
	Lzma         CompressionCode = 0x6c7a // "lz"
	Zstd         CompressionCode = 0x7a73 // "zs"
)

// MaxDecompressedSize bounds the output of Decompress. Header length fields
// are 16 bit, so no valid payload is larger.
const MaxDecompressedSize = 1 << 16

// CompressionCodes lists every supported compression, uncompressed first.
var CompressionCodes = []CompressionCode{Uncompressed, Bzip2, Zlib, Lzma, Zstd}

// String returns the name of a compression code as used in configuration.
func (c CompressionCode) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Bzip2:
		return "bzip2"
	case Zlib:
		return "zlib"
	case Lzma:
		return "lzma"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint16(c))
	}
}

// Valid reports whether c is a supported compression code.
func (c CompressionCode) Valid() bool {
	_, err := ParseCompressionCode(uint16(c))
	return err == nil
}

// ParseCompressionCode returns the CompressionCode for a raw header value.
func ParseCompressionCode(v uint16) (CompressionCode, error) {
	switch c := CompressionCode(v); c {
	case Uncompressed, Bzip2, Zlib, Lzma, Zstd:
		return c, nil
	}
	return 0, &InvalidCompressionCodeError{Code: v}
}

// ParseCompressionName parses the names returned by String. "none" is
// accepted as an alias for uncompressed.
func ParseCompressionName(name string) (CompressionCode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uncompressed", "none", "":
		return Uncompressed, nil
	case "bzip2":
		return Bzip2, nil
	case "zlib":
		return Zlib, nil
	case "lzma":
		return Lzma, nil
	case "zstd":
		return Zstd, nil
	}
	return 0, fmt.Errorf("servicepoint: unknown compression %q", name)
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

// A full display bitmap is 8960 bytes.
var scratch = bufpool.New(16 << 10)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("servicepoint: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressedSize))
	if err != nil {
		panic("servicepoint: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with the given code. For Uncompressed the input
// is returned as is.
func Compress(code CompressionCode, data []byte) ([]byte, error) {
	switch code {
	case Uncompressed:
		return data, nil
	case Zstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data))), nil
	}

	buf := scratch.Get()
	defer scratch.Put(buf)

	var (
		w   io.WriteCloser
		err error
	)
	switch code {
	case Zlib:
		w, err = zlib.NewWriterLevel(buf, zlib.BestSpeed)
	case Bzip2:
		w, err = bzip2.NewWriter(buf, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	case Lzma:
		w, err = newLzmaWriter(buf)
	default:
		return nil, &InvalidCompressionCodeError{Code: uint16(code)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s compress: %w", code, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", code, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", code, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Decompress reverses Compress. Any failure, including output larger than
// MaxDecompressedSize, is reported as ErrDecompressionFailed.
func Decompress(code CompressionCode, data []byte) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)
	switch code {
	case Uncompressed:
		return data, nil
	case Zstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, &ParseError{Message: ErrDecompressionFailed.Message, Err: err}
		}
		if len(out) > MaxDecompressedSize {
			return nil, ErrDecompressionFailed
		}
		return out, nil
	case Zlib:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(bytes.NewReader(data))
		if zr != nil {
			defer zr.Close()
		}
		r = zr
	case Bzip2:
		var br *bzip2.Reader
		br, err = bzip2.NewReader(bytes.NewReader(data), nil)
		if br != nil {
			defer br.Close()
		}
		r = br
	case Lzma:
		r, err = newLzmaReader(data)
	default:
		return nil, &InvalidCompressionCodeError{Code: uint16(code)}
	}
	if err != nil {
		return nil, &ParseError{Message: ErrDecompressionFailed.Message, Err: err}
	}

	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, &ParseError{Message: ErrDecompressionFailed.Message, Err: err}
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrDecompressionFailed
	}
	return out, nil
}
