package protocol

import (
	"errors"
	"fmt"
)

// Error types for packet decoding.
// Packets may come from an untrusted peer, so every decoding failure is
// returned as an error value and never panics.

// ErrMalformedPacket is matched by every decoding error of this package:
//
//	if errors.Is(err, protocol.ErrMalformedPacket) { drop the packet }
var ErrMalformedPacket = errors.New("servicepoint: malformed packet")

var (
	// ErrShortPacket is returned when a buffer is smaller than a header.
	ErrShortPacket = &ParseError{Message: "packet shorter than header"}

	// ErrExtraneousHeaderValues is returned when header fields a command does
	// not use are non-zero. The real display would usually still accept them.
	ErrExtraneousHeaderValues = &ParseError{Message: "header fields not used by the command are set"}

	// ErrDecompressionFailed is returned when a payload cannot be decompressed,
	// usually because the packet is corrupted.
	ErrDecompressionFailed = &ParseError{Message: "decompression failed"}
)

// ParseError represents a malformed packet.
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "servicepoint: parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "servicepoint: parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrMalformedPacket, and matches the
// sentinels above even when an underlying error is attached.
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedPacket {
		return true
	}
	t, ok := target.(*ParseError)
	return ok && t.Err == nil && t.Message == e.Message
}

// InvalidCommandCodeError is returned when the command code is not known.
type InvalidCommandCodeError struct {
	Code uint16
}

func (e *InvalidCommandCodeError) Error() string {
	return fmt.Sprintf("servicepoint: parse error: unknown command code 0x%04x", e.Code)
}

func (e *InvalidCommandCodeError) Is(target error) bool {
	return target == ErrMalformedPacket
}

// InvalidCompressionCodeError is returned when a compression code is not known.
type InvalidCompressionCodeError struct {
	Code uint16
}

func (e *InvalidCompressionCodeError) Error() string {
	return fmt.Sprintf("servicepoint: parse error: unknown compression code 0x%04x", e.Code)
}

func (e *InvalidCompressionCodeError) Is(target error) bool {
	return target == ErrMalformedPacket
}

// UnexpectedPayloadSizeError is returned when the payload size does not
// match what the header announces.
type UnexpectedPayloadSizeError struct {
	Expected int
	Actual   int
}

func (e *UnexpectedPayloadSizeError) Error() string {
	return fmt.Sprintf("servicepoint: parse error: expected payload of %d bytes, got %d", e.Expected, e.Actual)
}

func (e *UnexpectedPayloadSizeError) Is(target error) bool {
	return target == ErrMalformedPacket
}
