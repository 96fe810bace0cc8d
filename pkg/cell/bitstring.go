package cell

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// BitString is a packed, most-significant-bit-first sequence of bits.
type BitString struct {
	buf []byte
	n   int
}

func NewBitString(data []byte, n int) BitString {
	if n < 0 {
		n = 0
	}
	if n > len(data)*8 {
		n = len(data) * 8
	}
	buf := make([]byte, (n+7)/8)
	copy(buf, data)
	if rem := n % 8; rem != 0 {
		buf[len(buf)-1] &= 0xFF << (8 - rem)
	}
	return BitString{buf: buf, n: n}
}

func BitStringFromBytes(data []byte) BitString {
	return NewBitString(data, len(data)*8)
}

func (b BitString) Len() int {
	return b.n
}

func (b BitString) Bit(i int) bool {
	return b.buf[i/8]&(0x80>>(i%8)) != 0
}

// Bytes returns ceil(Len/8) bytes, the unused low bits of the last byte are zero.
func (b BitString) Bytes() []byte {
	res := make([]byte, len(b.buf))
	copy(res, b.buf)
	return res
}

func (b BitString) Equal(o BitString) bool {
	return b.n == o.n && bytes.Equal(b.buf, o.buf)
}

func (b *BitString) append(bit bool) {
	if b.n%8 == 0 {
		b.buf = append(b.buf, 0)
	}
	if bit {
		b.buf[b.n/8] |= 0x80 >> (b.n % 8)
	}
	b.n++
}

func (b *BitString) appendBits(o BitString) {
	for i := 0; i < o.n; i++ {
		b.append(o.Bit(i))
	}
}

// String formats bits as upper-case hex. A trailing '_' marks a bit length that
// is not a multiple of four: the last nibble then carries a completion tag.
func (b BitString) String() string {
	if b.n%4 == 0 {
		s := strings.ToUpper(hex.EncodeToString(b.buf))
		return s[:b.n/4]
	}
	padded := NewBitString(b.buf, b.n)
	padded.append(true)
	for padded.n%4 != 0 {
		padded.append(false)
	}
	s := strings.ToUpper(hex.EncodeToString(padded.buf))
	return s[:padded.n/4] + "_"
}
