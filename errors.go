package servicepoint

import (
	"errors"
)

var (
	// ErrConsumed is matched by every error returned from a handle whose value
	// was moved into another value or destroyed.
	ErrConsumed = errors.New("servicepoint: handle already consumed")

	ErrInvalidDimensions = errors.New("servicepoint: invalid dimensions")
	ErrInvalidLength     = errors.New("servicepoint: invalid length")
	ErrOutOfBounds       = errors.New("servicepoint: out of bounds")
	ErrInvalidBrightness = errors.New("servicepoint: brightness out of range")
	ErrInvalidChar       = errors.New("servicepoint: character not representable")

	// ErrWrongVariant is returned when asking a Command for a value its
	// variant does not carry.
	ErrWrongVariant = errors.New("servicepoint: wrong command variant")

	ErrConnectionClosed = errors.New("servicepoint: connection closed")
)

// ConsumedError is returned by operations on a consumed handle.
type ConsumedError struct {
	Type string
}

func (e *ConsumedError) Error() string {
	return "servicepoint: " + e.Type + ": handle already consumed"
}

func (e *ConsumedError) Is(target error) bool {
	return target == ErrConsumed
}

// ConnectionError wraps a transport failure. The packet is lost, nothing is
// retried.
type ConnectionError struct {
	Op  string // Operation that failed: "open", "send", "close"
	Err error
}

func (e *ConnectionError) Error() string {
	return "servicepoint: connection error during " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection reports whether a connection should be discarded
// after err. Encoding errors leave the connection untouched.
func ShouldCloseConnection(err error) bool {
	if errors.Is(err, ErrConnectionClosed) {
		return true
	}
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
