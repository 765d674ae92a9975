package leb128

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadUint32(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   uint32
	}{
		{bytes: []byte{0x00}, exp: 0},
		{bytes: []byte{0x04}, exp: 4},
		{bytes: []byte{0x01}, exp: 1},
		{bytes: []byte{0x80, 0x7f}, exp: 16256},
		{bytes: []byte{0xe5, 0x8e, 0x26}, exp: 624485},
		{bytes: []byte{0x80, 0x80, 0x80, 0x4f}, exp: 165675008},
		{bytes: []byte{0xff, 0xff, 0xff, 0xff, 0xf}, exp: 0xffffffff},
	} {
		actual, num, err := LoadUint32(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
		require.Equal(t, len(c.bytes), num)
	}
}

func TestLoadUint32_errors(t *testing.T) {
	for _, c := range []struct {
		name  string
		bytes []byte
		exp   error
	}{
		{name: "empty", bytes: []byte{}, exp: ErrTruncated},
		{name: "unterminated", bytes: []byte{0x80, 0x80}, exp: ErrTruncated},
		{name: "tail bits set", bytes: []byte{0xff, 0xff, 0xff, 0xff, 0x10}, exp: ErrOverflow},
		{name: "six bytes", bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, exp: ErrOverflow},
		{name: "over-long zero", bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x00}, exp: ErrNonCanonical},
		{name: "redundant final byte", bytes: []byte{0xff, 0x00}, exp: ErrNonCanonical},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, num, err := LoadUint32(c.bytes)
			require.ErrorIs(t, err, c.exp)
			require.Zero(t, num)
		})
	}
}

func TestLoadUint64(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   uint64
	}{
		{bytes: []byte{0x00}, exp: 0},
		{bytes: []byte{0xe5, 0x8e, 0x26}, exp: 624485},
		{bytes: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, exp: 0xffffffffffffffff},
	} {
		actual, num, err := LoadUint64(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
		require.Equal(t, len(c.bytes), num)
	}

	_, _, err := LoadUint64([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestLoadInt32(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   int32
	}{
		{bytes: []byte{0x00}, exp: 0},
		{bytes: []byte{0x04}, exp: 4},
		{bytes: []byte{0x7f}, exp: -1},
		{bytes: []byte{0x40}, exp: -64},
		{bytes: []byte{0xc0, 0x00}, exp: 64},
		{bytes: []byte{0xbf, 0x7f}, exp: -65},
		{bytes: []byte{0xff, 0xff, 0xff, 0xff, 0x07}, exp: 2147483647},
		{bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x78}, exp: -2147483648},
	} {
		actual, num, err := LoadInt32(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
		require.Equal(t, len(c.bytes), num)
	}
}

func TestLoadInt32_errors(t *testing.T) {
	for _, c := range []struct {
		name  string
		bytes []byte
		exp   error
	}{
		{name: "empty", bytes: []byte{}, exp: ErrTruncated},
		{name: "unterminated", bytes: []byte{0xff}, exp: ErrTruncated},
		{name: "bad sign extension positive", bytes: []byte{0xff, 0xff, 0xff, 0xff, 0x4f}, exp: ErrOverflow},
		{name: "bad sign extension negative", bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x08}, exp: ErrOverflow},
		{name: "over-long minus one", bytes: []byte{0xff, 0x7f}, exp: ErrNonCanonical},
		{name: "over-long one", bytes: []byte{0x81, 0x00}, exp: ErrNonCanonical},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, num, err := LoadInt32(c.bytes)
			require.ErrorIs(t, err, c.exp)
			require.Zero(t, num)
		})
	}
}

func TestLoadInt64(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   int64
	}{
		{bytes: []byte{0x00}, exp: 0},
		{bytes: []byte{0x7f}, exp: -1},
		{bytes: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}, exp: 9223372036854775807},
		{bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, exp: -9223372036854775808},
	} {
		actual, num, err := LoadInt64(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
		require.Equal(t, len(c.bytes), num)
	}

	for _, c := range []struct {
		name  string
		bytes []byte
		exp   error
	}{
		{name: "tenth byte overflow", bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}, exp: ErrOverflow},
		{name: "over-long minus one", bytes: []byte{0xff, 0x7f}, exp: ErrNonCanonical},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := LoadInt64(c.bytes)
			require.ErrorIs(t, err, c.exp)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 4, 63, 64, 127, 128, 624485, 0xffffffff} {
		buf := EncodeUint32(v)
		actual, num, err := LoadUint32(buf)
		require.NoError(t, err)
		require.Equal(t, v, actual)
		require.Equal(t, len(buf), num)
	}
	for _, v := range []int32{0, 1, -1, 63, -64, 64, -65, 2147483647, -2147483648} {
		buf := EncodeInt32(v)
		actual, num, err := LoadInt32(buf)
		require.NoError(t, err)
		require.Equal(t, v, actual)
		require.Equal(t, len(buf), num)
	}
	for _, v := range []int64{0, -1, 9223372036854775807, -9223372036854775808} {
		buf := EncodeInt64(v)
		actual, num, err := LoadInt64(buf)
		require.NoError(t, err)
		require.Equal(t, v, actual)
		require.Equal(t, len(buf), num)
	}
	for _, v := range []uint64{0, 1, 0xffffffffffffffff} {
		buf := EncodeUint64(v)
		actual, num, err := LoadUint64(buf)
		require.NoError(t, err)
		require.Equal(t, v, actual)
		require.Equal(t, len(buf), num)
	}
}

func TestEncodeFixedUint32(t *testing.T) {
	for _, v := range []uint32{0, 1, 624485, 0xffffffff} {
		buf := make([]byte, 5)
		EncodeFixedUint32(buf, v)
		for i := 0; i < 4; i++ {
			require.NotZero(t, buf[i]&0x80)
		}
		require.Zero(t, buf[4]&0x80)
	}

	buf := make([]byte, 5)
	EncodeFixedUint32(buf, 624485)
	require.Equal(t, []byte{0xe5, 0x8e, 0xa6, 0x80, 0x00}, buf)
}
