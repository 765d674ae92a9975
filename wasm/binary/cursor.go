package binary

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmtools/wabin/wasm/leb128"
)

// cursor tracks the read position within the input and the end of the region
// reads may touch. readEnd is narrowed to each section's declared end while
// its payload is decoded, so a field spilling out of its section fails here
// rather than silently reading the next section's bytes.
type cursor struct {
	data    []byte
	offset  int
	readEnd int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data, readEnd: len(data)}
}

func (c *cursor) errAt(format string, args ...interface{}) error {
	return &DecodeError{Offset: c.offset, Err: fmt.Errorf(format, args...)}
}

func (c *cursor) eof() bool { return c.offset == len(c.data) }

func (c *cursor) readByte(what string) (byte, error) {
	if c.offset+1 > c.readEnd {
		return 0, c.errAt("unable to read %s: unexpected end", what)
	}
	b := c.data[c.offset]
	c.offset++
	return b, nil
}

func (c *cursor) readBytes(n int, what string) ([]byte, error) {
	if n < 0 || c.offset+n > c.readEnd {
		return nil, c.errAt("unable to read %s: unexpected end", what)
	}
	b := c.data[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

func (c *cursor) readU32(what string) (uint32, error) {
	v, n, err := leb128.LoadUint32(c.data[c.offset:c.readEnd])
	if err != nil {
		return 0, c.errAt("unable to read %s: %w", what, err)
	}
	c.offset += n
	return v, nil
}

func (c *cursor) readI32(what string) (int32, error) {
	v, n, err := leb128.LoadInt32(c.data[c.offset:c.readEnd])
	if err != nil {
		return 0, c.errAt("unable to read %s: %w", what, err)
	}
	c.offset += n
	return v, nil
}

func (c *cursor) readI64(what string) (int64, error) {
	v, n, err := leb128.LoadInt64(c.data[c.offset:c.readEnd])
	if err != nil {
		return 0, c.errAt("unable to read %s: %w", what, err)
	}
	c.offset += n
	return v, nil
}

// readF32Bits reads a 4-byte little-endian float and returns its raw bits.
func (c *cursor) readF32Bits(what string) (uint32, error) {
	b, err := c.readBytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readF64Bits reads an 8-byte little-endian float and returns its raw bits.
func (c *cursor) readF64Bits(what string) (uint64, error) {
	b, err := c.readBytes(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readString reads a u32 length followed by that many raw bytes.
func (c *cursor) readString(what string) (string, error) {
	n, err := c.readU32(what + " length")
	if err != nil {
		return "", err
	}
	b, err := c.readBytes(int(n), what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
