package cell

import (
	"fmt"
	"math/big"
)

// Builder accumulates bits and references of a new cell.
// The first failure is kept and reported by Err and EndCell, later writes are ignored.
type Builder struct {
	bits BitString
	refs []*Cell
	err  error
}

func NewBuilder() *Builder {
	return &Builder{bits: BitString{buf: make([]byte, 0, 128)}}
}

func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) BitsUsed() int {
	return b.bits.n
}

func (b *Builder) RefsUsed() int {
	return len(b.refs)
}

func (b *Builder) BitsLeft() int {
	return MaxBits - b.bits.n
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) reserve(bits, refs int) bool {
	if b.err != nil {
		return false
	}
	if b.bits.n+bits > MaxBits {
		b.fail(fmt.Errorf("%w: %d bits requested, %d left", ErrOverflow, bits, MaxBits-b.bits.n))
		return false
	}
	if len(b.refs)+refs > MaxRefs {
		b.fail(fmt.Errorf("%w: %d refs requested, %d left", ErrOverflow, refs, MaxRefs-len(b.refs)))
		return false
	}
	return true
}

func (b *Builder) StoreBit(v bool) *Builder {
	if b.reserve(1, 0) {
		b.bits.append(v)
	}
	return b
}

func (b *Builder) StoreUint(v uint64, n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 || n > 64 || (n < 64 && v>>n != 0) {
		return b.fail(fmt.Errorf("%w: %d does not fit %d bits", ErrValueRange, v, n))
	}
	if b.reserve(n, 0) {
		for i := n - 1; i >= 0; i-- {
			b.bits.append(v>>i&1 == 1)
		}
	}
	return b
}

func (b *Builder) StoreInt(v int64, n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 1 || n > 64 {
		return b.fail(fmt.Errorf("%w: int width %d", ErrValueRange, n))
	}
	if n < 64 {
		limit := int64(1) << (n - 1)
		if v < -limit || v >= limit {
			return b.fail(fmt.Errorf("%w: %d does not fit %d bits", ErrValueRange, v, n))
		}
		return b.StoreUint(uint64(v)&(1<<n-1), n)
	}
	return b.StoreUint(uint64(v), n)
}

func (b *Builder) StoreBigUint(v *big.Int, n int) *Builder {
	if b.err != nil {
		return b
	}
	if v == nil || n < 0 || n > 256 || v.Sign() < 0 || v.BitLen() > n {
		return b.fail(fmt.Errorf("%w: %v does not fit %d bits", ErrValueRange, v, n))
	}
	if b.reserve(n, 0) {
		for i := n - 1; i >= 0; i-- {
			b.bits.append(v.Bit(i) == 1)
		}
	}
	return b
}

func (b *Builder) StoreBigInt(v *big.Int, n int) *Builder {
	if b.err != nil {
		return b
	}
	if v == nil || n < 1 || n > 257 {
		return b.fail(fmt.Errorf("%w: %v does not fit %d bits", ErrValueRange, v, n))
	}
	if v.Sign() >= 0 {
		if v.BitLen() >= n {
			return b.fail(fmt.Errorf("%w: %v does not fit %d bits", ErrValueRange, v, n))
		}
		if b.reserve(n, 0) {
			for i := n - 1; i >= 0; i-- {
				b.bits.append(v.Bit(i) == 1)
			}
		}
		return b
	}
	if new(big.Int).Not(v).BitLen() >= n {
		return b.fail(fmt.Errorf("%w: %v does not fit %d bits", ErrValueRange, v, n))
	}
	twos := new(big.Int).Add(v, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	if b.reserve(n, 0) {
		for i := n - 1; i >= 0; i-- {
			b.bits.append(twos.Bit(i) == 1)
		}
	}
	return b
}

func (b *Builder) StoreBits(bits BitString) *Builder {
	if b.reserve(bits.n, 0) {
		b.bits.appendBits(bits)
	}
	return b
}

func (b *Builder) StoreBytes(data []byte) *Builder {
	return b.StoreBits(BitStringFromBytes(data))
}

func (b *Builder) StoreRef(c *Cell) *Builder {
	if b.err != nil {
		return b
	}
	if c == nil {
		return b.fail(fmt.Errorf("%w: nil reference", ErrValueRange))
	}
	if b.reserve(0, 1) {
		b.refs = append(b.refs, c)
	}
	return b
}

// StoreMaybeRef writes a presence bit followed by the reference when c is not nil.
func (b *Builder) StoreMaybeRef(c *Cell) *Builder {
	if c == nil {
		return b.StoreBit(false)
	}
	if !b.reserve(1, 1) {
		return b
	}
	return b.StoreBit(true).StoreRef(c)
}

// StoreBuilder appends bits and references of another builder.
func (b *Builder) StoreBuilder(o *Builder) *Builder {
	if o.err != nil {
		return b.fail(o.err)
	}
	if b.reserve(o.bits.n, len(o.refs)) {
		b.bits.appendBits(o.bits)
		b.refs = append(b.refs, o.refs...)
	}
	return b
}

// StoreSlice appends the unread part of s without consuming it.
func (b *Builder) StoreSlice(s *Slice) *Builder {
	if b.err != nil {
		return b
	}
	cp := s.Copy()
	if !b.reserve(cp.BitsLeft(), cp.RefsLeft()) {
		return b
	}
	bits, _ := cp.LoadBits(cp.BitsLeft())
	b.bits.appendBits(bits)
	for cp.RefsLeft() > 0 {
		r, _ := cp.LoadRef()
		b.refs = append(b.refs, r)
	}
	return b
}

// StoreCoins writes a VarUInteger 16: a 4-bit byte length followed by the value.
func (b *Builder) StoreCoins(v *big.Int) *Builder {
	if b.err != nil {
		return b
	}
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 {
		return b.fail(fmt.Errorf("%w: negative coins %v", ErrValueRange, v))
	}
	l := (v.BitLen() + 7) / 8
	if l > 15 {
		return b.fail(fmt.Errorf("%w: coins %v too large", ErrValueRange, v))
	}
	return b.StoreUint(uint64(l), 4).StoreBigUint(v, l*8)
}

func (b *Builder) StoreGrams(v uint64) *Builder {
	return b.StoreCoins(new(big.Int).SetUint64(v))
}

func (b *Builder) EndCell() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newCell(b.bits.buf, b.bits.n, b.refs), nil
}
