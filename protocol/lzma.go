package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Lzma payloads are xz streams with a single LZMA2 filter chain. Legacy
// .lzma streams are still accepted when decoding.
//
// Both containers declare the dictionary size in their headers and the
// decoder allocates it up front. Decompressed output never exceeds
// MaxDecompressedSize, so a larger dictionary is never referenced and is
// lowered to that size before the decoder sees it.

var lzmaWriterConfig = xz.WriterConfig{DictCap: MaxDecompressedSize}

var errLzmaContainer = errors.New("lzma: malformed container")

const (
	xzFooterLen   = 12
	xzLzma2Filter = 0x21
)

func newLzmaWriter(w io.Writer) (io.WriteCloser, error) {
	return lzmaWriterConfig.NewWriter(w)
}

func newLzmaReader(data []byte) (io.Reader, error) {
	if len(data) >= xz.HeaderLen && xz.ValidHeader(data[:xz.HeaderLen]) {
		data, err := capXzDictionaries(data)
		if err != nil {
			return nil, err
		}
		return xz.ReaderConfig{DictCap: lzma.MinDictCap, SingleStream: true}.NewReader(bytes.NewReader(data))
	}

	if len(data) < lzma.HeaderLen {
		return nil, errLzmaContainer
	}
	header := bytes.Clone(data[:lzma.HeaderLen])
	if binary.LittleEndian.Uint32(header[1:5]) > MaxDecompressedSize {
		binary.LittleEndian.PutUint32(header[1:5], MaxDecompressedSize)
	}
	body := io.MultiReader(bytes.NewReader(header), bytes.NewReader(data[lzma.HeaderLen:]))
	return lzma.ReaderConfig{DictCap: lzma.MinDictCap}.NewReader(body)
}

// capXzDictionaries walks the blocks listed in the stream index and lowers
// every LZMA2 dictionary size above MaxDecompressedSize. data is copied
// before the first change. Only single stream files are accepted.
func capXzDictionaries(data []byte) ([]byte, error) {
	if len(data) < xz.HeaderLen+xzFooterLen {
		return nil, errLzmaContainer
	}
	footer := data[len(data)-xzFooterLen:]
	if footer[10] != 'Y' || footer[11] != 'Z' {
		return nil, errLzmaContainer
	}
	indexLen := (int(binary.LittleEndian.Uint32(footer[4:8])) + 1) * 4
	indexStart := len(data) - xzFooterLen - indexLen
	if indexStart < xz.HeaderLen || data[indexStart] != 0 {
		return nil, errLzmaContainer
	}

	index := data[indexStart+1 : len(data)-xzFooterLen]
	records, n := binary.Uvarint(index)
	if n <= 0 || records > uint64(len(index)) {
		return nil, errLzmaContainer
	}
	index = index[n:]

	limit := lzma.EncodeDictCap(MaxDecompressedSize)
	copied := false
	pos := xz.HeaderLen
	for range records {
		unpadded, n := binary.Uvarint(index)
		if n <= 0 {
			return nil, errLzmaContainer
		}
		index = index[n:]
		if _, n = binary.Uvarint(index); n <= 0 {
			return nil, errLzmaContainer
		}
		index = index[n:]

		if unpadded == 0 || unpadded > uint64(indexStart-pos) {
			return nil, errLzmaContainer
		}
		offset, err := lzma2DictOffset(data[pos:indexStart])
		if err != nil {
			return nil, err
		}
		if offset >= 0 && data[pos+offset] > limit {
			if !copied {
				data = bytes.Clone(data)
				copied = true
			}
			data[pos+offset] = limit
			headerLen := (int(data[pos]) + 1) * 4
			binary.LittleEndian.PutUint32(data[pos+headerLen-4:], crc32.ChecksumIEEE(data[pos:pos+headerLen-4]))
		}
		pos += int((unpadded + 3) &^ 3)
	}
	if pos != indexStart {
		return nil, errLzmaContainer
	}
	return data, nil
}

// lzma2DictOffset returns the offset of the LZMA2 dictionary size byte in
// the block header at the start of block, or -1 without an LZMA2 filter.
func lzma2DictOffset(block []byte) (int, error) {
	if len(block) == 0 || block[0] == 0 {
		return 0, errLzmaContainer
	}
	headerLen := (int(block[0]) + 1) * 4
	if headerLen > len(block) {
		return 0, errLzmaContainer
	}
	h := block[:headerLen-4]
	if len(h) < 2 {
		return 0, errLzmaContainer
	}

	flags := h[1]
	off := 2
	skip := func() (uint64, bool) {
		v, n := binary.Uvarint(h[off:])
		if n <= 0 {
			return 0, false
		}
		off += n
		return v, true
	}
	if flags&0x40 != 0 {
		if _, ok := skip(); !ok {
			return 0, errLzmaContainer
		}
	}
	if flags&0x80 != 0 {
		if _, ok := skip(); !ok {
			return 0, errLzmaContainer
		}
	}

	dict := -1
	for range int(flags&0x03) + 1 {
		id, ok := skip()
		if !ok {
			return 0, errLzmaContainer
		}
		size, ok := skip()
		if !ok || size > uint64(len(h)-off) {
			return 0, errLzmaContainer
		}
		if id == xzLzma2Filter && size == 1 {
			dict = off
		}
		off += int(size)
	}
	return dict, nil
}
