// Package binary decodes and encodes modules in the WebAssembly 1.0 binary
// format. Decoding is event driven: DecodeModule walks the byte stream and
// reports every construct to a Reader implementation.
package binary

import (
	"errors"
	"fmt"
)

// ErrInvalidMagicNumber is returned when the 4-byte preamble is not "\0asm".
var ErrInvalidMagicNumber = errors.New("invalid magic number")

// ErrInvalidVersion is returned when the 4-byte version is not 1.
var ErrInvalidVersion = errors.New("invalid version header")

// DecodeError reports a malformed module. Offset is the position in the input
// at which decoding stopped.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%07x: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
