package servicepoint

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/zeebo/xxh3"

	"github.com/pior/servicepoint/protocol"
)

// Packet is the framed wire form of one Command: a 10 byte header followed
// by the payload.
type Packet slot[packet]

type packet struct {
	frame []byte
}

const typePacket = "Packet"

func (p *Packet) ref() (*packet, error) {
	return (*slot[packet])(p).get(typePacket)
}

func (p *Packet) take() (*packet, error) {
	return (*slot[packet])(p).take(typePacket)
}

// NewPacket encodes c. It consumes c, also when encoding fails.
func NewPacket(c *Command) (*Packet, error) {
	cmd, err := c.take()
	if err != nil {
		return nil, err
	}
	h, payload, err := cmd.encode()
	if err != nil {
		return nil, fmt.Errorf("servicepoint: encode %s: %w", cmd.kind(), err)
	}
	return &Packet{v: &packet{frame: protocol.AppendFrame(make([]byte, 0, protocol.HeaderSize+len(payload)), h, payload)}}, nil
}

// NewRawPacket frames an arbitrary header and payload without checking them.
func NewRawPacket(h protocol.Header, payload []byte) *Packet {
	return &Packet{v: &packet{frame: protocol.AppendFrame(nil, h, payload)}}
}

// TryLoadPacket copies data into a Packet after checking the frame: a full
// header, a known command code and, for linear bitmaps, a known compression.
// The command itself is decoded by CommandFromPacket.
func TryLoadPacket(data []byte) (*Packet, error) {
	h, _, err := protocol.SplitFrame(data)
	if err != nil {
		return nil, err
	}
	if err := protocol.ValidateFrame(h); err != nil {
		return nil, err
	}
	return &Packet{v: &packet{frame: bytes.Clone(data)}}, nil
}

// Header returns the decoded header.
func (p *Packet) Header() (protocol.Header, error) {
	pk, err := p.ref()
	if err != nil {
		return protocol.Header{}, err
	}
	return protocol.DecodeHeader(pk.frame)
}

// Payload returns a copy of the bytes after the header.
func (p *Packet) Payload() ([]byte, error) {
	pk, err := p.ref()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(pk.frame[protocol.HeaderSize:]), nil
}

// Bytes returns a copy of the framed packet, ready to be sent.
func (p *Packet) Bytes() ([]byte, error) {
	pk, err := p.ref()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(pk.frame), nil
}

// Len returns the framed size in bytes.
func (p *Packet) Len() (int, error) {
	pk, err := p.ref()
	if err != nil {
		return 0, err
	}
	return len(pk.frame), nil
}

// Fingerprint returns the XXH3 hash of the framed packet. Equal frames have
// equal fingerprints.
func (p *Packet) Fingerprint() (uint64, error) {
	pk, err := p.ref()
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(pk.frame), nil
}

func (p *Packet) Clone() (*Packet, error) {
	pk, err := p.ref()
	if err != nil {
		return nil, err
	}
	return &Packet{v: &packet{frame: bytes.Clone(pk.frame)}}, nil
}

func (p *Packet) Equal(other *Packet) bool {
	a, err := p.ref()
	if err != nil {
		return false
	}
	b, err := other.ref()
	if err != nil {
		return false
	}
	return bytes.Equal(a.frame, b.frame)
}

func (p *Packet) Destroy() error {
	_, err := p.take()
	return err
}

func (p *Packet) IsValid() bool {
	return (*slot[packet])(p).valid()
}

// CommandFromPacket decodes the command carried by p. It consumes p, also
// when decoding fails. Decoding errors match protocol.ErrMalformedPacket.
func CommandFromPacket(p *Packet) (*Command, error) {
	pk, err := p.take()
	if err != nil {
		return nil, err
	}
	h, payload, err := protocol.SplitFrame(pk.frame)
	if err != nil {
		return nil, err
	}
	code, err := protocol.ParseCommandCode(h.CommandCode)
	if err != nil {
		return nil, err
	}

	var cmd command
	switch code {
	case protocol.CmdClear:
		cmd, err = decodeBare(h, payload, KindClear, code)
	case protocol.CmdHardReset:
		cmd, err = decodeBare(h, payload, KindHardReset, code)
	case protocol.CmdFadeOut:
		cmd, err = decodeBare(h, payload, KindFadeOut, code)
	case protocol.CmdBitmapLegacy:
		cmd, err = decodeBare(h, payload, KindBitmapLegacy, code)
	case protocol.CmdBrightness:
		cmd, err = decodeBrightness(h, payload)
	case protocol.CmdCharBrightness:
		cmd, err = decodeCharBrightness(h, payload)
	case protocol.CmdCp437Data:
		cmd, err = decodeCp437(h, payload)
	case protocol.CmdUtf8Data:
		cmd, err = decodeUtf8(h, payload)
	case protocol.CmdBitmapLinear:
		cmd, err = decodeLinear(h, payload, KindBitmapLinear)
	case protocol.CmdBitmapLinearAnd:
		cmd, err = decodeLinear(h, payload, KindBitmapLinearAnd)
	case protocol.CmdBitmapLinearOr:
		cmd, err = decodeLinear(h, payload, KindBitmapLinearOr)
	case protocol.CmdBitmapLinearXor:
		cmd, err = decodeLinear(h, payload, KindBitmapLinearXor)
	default:
		compression, _ := code.WindowCompression()
		cmd, err = decodeWindow(h, payload, compression)
	}
	if err != nil {
		return nil, err
	}
	return newCommand(cmd), nil
}

// invalid wraps a domain error found while decoding so it also matches
// protocol.ErrMalformedPacket.
func invalid(err error) error {
	return &protocol.ParseError{Message: "invalid command", Err: err}
}

func decodeBare(h protocol.Header, payload []byte, k Kind, code protocol.CommandCode) (command, error) {
	if len(payload) != 0 {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: 0, Actual: len(payload)}
	}
	if !h.IsZero() {
		return nil, protocol.ErrExtraneousHeaderValues
	}
	return bare{k: k, code: code}, nil
}

func decodeBrightness(h protocol.Header, payload []byte) (command, error) {
	if len(payload) != 1 {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: 1, Actual: len(payload)}
	}
	if !h.IsZero() {
		return nil, protocol.ErrExtraneousHeaderValues
	}
	b, err := ParseBrightness(payload[0])
	if err != nil {
		return nil, invalid(err)
	}
	return brightnessCmd{value: b}, nil
}

// tileArea reads the tile origin and size of grid commands.
func tileArea(h protocol.Header) (x, y, width, height int, err error) {
	x, y, width, height = int(h.A), int(h.B), int(h.C), int(h.D)
	if err := tileWindow(x, y, width, height); err != nil {
		return 0, 0, 0, 0, invalid(err)
	}
	return x, y, width, height, nil
}

func decodeCharBrightness(h protocol.Header, payload []byte) (command, error) {
	x, y, width, height, err := tileArea(h)
	if err != nil {
		return nil, err
	}
	if len(payload) != width*height {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: width * height, Actual: len(payload)}
	}
	g, err := LoadBrightnessGrid(width, height, payload)
	if err != nil {
		return nil, invalid(err)
	}
	return newBrightnessCmd(x, y, g.v), nil
}

func decodeCp437(h protocol.Header, payload []byte) (command, error) {
	x, y, width, height, err := tileArea(h)
	if err != nil {
		return nil, err
	}
	if len(payload) != width*height {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: width * height, Actual: len(payload)}
	}
	return newCp437Cmd(x, y, &grid[byte]{width: width, height: height, cells: bytes.Clone(payload)}), nil
}

func decodeUtf8(h protocol.Header, payload []byte) (command, error) {
	x, y, width, height, err := tileArea(h)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(payload) {
		return nil, invalid(fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidChar))
	}
	if n := utf8.RuneCount(payload); n != width*height {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: width * height, Actual: n}
	}
	g, err := loadCharGridUTF8(width, height, payload)
	if err != nil {
		return nil, invalid(err)
	}
	return newUtf8Cmd(x, y, g.v), nil
}

func decodeLinear(h protocol.Header, payload []byte, k Kind) (command, error) {
	if h.D != 0 {
		return nil, protocol.ErrExtraneousHeaderValues
	}
	compression, err := protocol.ParseCompressionCode(h.C)
	if err != nil {
		return nil, err
	}
	data, err := protocol.Decompress(compression, payload)
	if err != nil {
		return nil, err
	}
	if len(data) != int(h.B) {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: int(h.B), Actual: len(data)}
	}
	offset := int(h.A)
	if offset+len(data)*8 > PixelCount {
		return nil, invalid(fmt.Errorf("%w: %d bits at offset %d exceed %d pixels", ErrOutOfBounds, len(data)*8, offset, PixelCount))
	}
	return &linearCmd{k: k, offset: offset, bits: bitVecFromBytes(bytes.Clone(data)), compression: compression}, nil
}

func decodeWindow(h protocol.Header, payload []byte, compression CompressionCode) (command, error) {
	x, y := int(h.A)*TileSize, int(h.B)
	width, height := int(h.C)*TileSize, int(h.D)
	if err := pixelWindow(x, y, width, height); err != nil {
		return nil, invalid(err)
	}
	data, err := protocol.Decompress(compression, payload)
	if err != nil {
		return nil, err
	}
	if want := width * height / 8; len(data) != want {
		return nil, &protocol.UnexpectedPayloadSizeError{Expected: want, Actual: len(data)}
	}
	return &windowCmd{x: x, y: y, compression: compression, bitmap: &bitmap{width: width, height: height, data: bits(bytes.Clone(data))}}, nil
}
