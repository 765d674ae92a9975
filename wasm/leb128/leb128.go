// Package leb128 encodes and decodes the LEB128 variable-length integers
// used throughout the binary format. Decoding is strict: encodings longer
// than necessary are rejected as non-canonical.
package leb128

import "errors"

var (
	// ErrTruncated means the input ended before the final byte of the
	// encoding.
	ErrTruncated = errors.New("leb128: truncated")
	// ErrOverflow means the encoding does not fit the target width.
	ErrOverflow = errors.New("leb128: overflows target type")
	// ErrNonCanonical means the value is valid but encoded in more bytes
	// than necessary.
	ErrNonCanonical = errors.New("leb128: non-canonical encoding")
)

const (
	maxLen32 = 5
	maxLen64 = 10
)

// LoadUint32 decodes an unsigned 32-bit integer from the head of b and
// returns the value and the number of bytes consumed. n is zero on error.
func LoadUint32(b []byte) (ret uint32, n int, err error) {
	var shift uint
	for i := 0; i < maxLen32; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}
		c := b[i]
		if i == maxLen32-1 && c&0xf0 != 0 {
			return 0, 0, ErrOverflow
		}
		ret |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			if i > 0 && c == 0 {
				return 0, 0, ErrNonCanonical
			}
			return ret, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrOverflow
}

// LoadUint64 decodes an unsigned 64-bit integer from the head of b.
func LoadUint64(b []byte) (ret uint64, n int, err error) {
	var shift uint
	for i := 0; i < maxLen64; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}
		c := b[i]
		if i == maxLen64-1 && c&0xfe != 0 {
			return 0, 0, ErrOverflow
		}
		ret |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			if i > 0 && c == 0 {
				return 0, 0, ErrNonCanonical
			}
			return ret, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrOverflow
}

// LoadInt32 decodes a signed 32-bit integer from the head of b.
func LoadInt32(b []byte) (ret int32, n int, err error) {
	var shift uint
	for i := 0; i < maxLen32; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}
		c := b[i]
		if i == maxLen32-1 {
			// Only 4 value bits remain. The sign bit is 0x8 and the
			// bits above it must agree with it.
			if c&0x80 != 0 {
				return 0, 0, ErrOverflow
			}
			top := c & 0x70
			if c&0x8 != 0 {
				if top != 0x70 {
					return 0, 0, ErrOverflow
				}
			} else if top != 0 {
				return 0, 0, ErrOverflow
			}
		}
		ret |= int32(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 32 && c&0x40 != 0 {
				ret |= -1 << shift
			}
			if i > 0 && redundantSignByte(c, b[i-1]) {
				return 0, 0, ErrNonCanonical
			}
			return ret, i + 1, nil
		}
	}
	return 0, 0, ErrOverflow
}

// LoadInt64 decodes a signed 64-bit integer from the head of b.
func LoadInt64(b []byte) (ret int64, n int, err error) {
	var shift uint
	for i := 0; i < maxLen64; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}
		c := b[i]
		if i == maxLen64-1 {
			// Only 1 value bit remains: the sign bit 0x1. The bits
			// above it must agree with it.
			if c&0x80 != 0 {
				return 0, 0, ErrOverflow
			}
			top := c & 0x7e
			if c&0x1 != 0 {
				if top != 0x7e {
					return 0, 0, ErrOverflow
				}
			} else if top != 0 {
				return 0, 0, ErrOverflow
			}
		}
		ret |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				ret |= -1 << shift
			}
			if i > 0 && redundantSignByte(c, b[i-1]) {
				return 0, 0, ErrNonCanonical
			}
			return ret, i + 1, nil
		}
	}
	return 0, 0, ErrOverflow
}

// redundantSignByte reports whether a final signed-LEB byte carries no
// information: all sign-extension bits with the previous byte's top value bit
// already matching the sign.
func redundantSignByte(last, prev byte) bool {
	if last == 0 {
		return prev&0x40 == 0
	}
	if last == 0x7f {
		return prev&0x40 != 0
	}
	return false
}

// EncodeUint32 appends the minimal unsigned encoding of v.
func EncodeUint32(v uint32) (buf []byte) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		buf = append(buf, c)
		if c&0x80 == 0 {
			return
		}
	}
}

// EncodeUint64 appends the minimal unsigned encoding of v.
func EncodeUint64(v uint64) (buf []byte) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		buf = append(buf, c)
		if c&0x80 == 0 {
			return
		}
	}
}

// EncodeInt32 appends the minimal signed encoding of v.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 appends the minimal signed encoding of v.
func EncodeInt64(v int64) (buf []byte) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		buf = append(buf, c)
		if done {
			return
		}
	}
}

// EncodeFixedUint32 writes v as exactly five bytes at buf, padding with
// continuation bits. The result decodes to v under a non-strict reader and
// can be rewritten in place.
func EncodeFixedUint32(buf []byte, v uint32) {
	_ = buf[4]
	for i := 0; i < 4; i++ {
		buf[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	buf[4] = byte(v & 0xf)
}
