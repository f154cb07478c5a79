package protocol

import (
	"encoding/binary"
)

// Header is the fixed packet header. The meaning of A..D depends on the
// command, see the CommandCode constants.
type Header struct {
	CommandCode uint16
	A           uint16
	B           uint16
	C           uint16
	D           uint16
}

// IsZero reports whether all command specific fields are zero.
func (h Header) IsZero() bool {
	return h.A == 0 && h.B == 0 && h.C == 0 && h.D == 0
}

// EncodeHeader writes h into the first HeaderSize bytes of buf.
func EncodeHeader(buf []byte, h Header) {
	_ = buf[HeaderSize-1]
	binary.BigEndian.PutUint16(buf[0:2], h.CommandCode)
	binary.BigEndian.PutUint16(buf[2:4], h.A)
	binary.BigEndian.PutUint16(buf[4:6], h.B)
	binary.BigEndian.PutUint16(buf[6:8], h.C)
	binary.BigEndian.PutUint16(buf[8:10], h.D)
}

// DecodeHeader reads a header from the first HeaderSize bytes of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortPacket
	}
	return Header{
		CommandCode: binary.BigEndian.Uint16(b[0:2]),
		A:           binary.BigEndian.Uint16(b[2:4]),
		B:           binary.BigEndian.Uint16(b[4:6]),
		C:           binary.BigEndian.Uint16(b[6:8]),
		D:           binary.BigEndian.Uint16(b[8:10]),
	}, nil
}

// AppendFrame appends the framed form of header and payload to dst.
func AppendFrame(dst []byte, h Header, payload []byte) []byte {
	var hb [HeaderSize]byte
	EncodeHeader(hb[:], h)
	dst = append(dst, hb[:]...)
	return append(dst, payload...)
}

// SplitFrame splits a framed packet into its header and payload. The payload
// aliases b.
func SplitFrame(b []byte) (Header, []byte, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, nil, err
	}
	return h, b[HeaderSize:], nil
}

// ValidateFrame checks what can be checked without decoding the command:
// the header is complete, the command code is known and linear bitmap
// commands declare a supported compression.
func ValidateFrame(h Header) error {
	code, err := ParseCommandCode(h.CommandCode)
	if err != nil {
		return err
	}
	if code.IsLinear() {
		if _, err := ParseCompressionCode(h.C); err != nil {
			return err
		}
	}
	return nil
}
