package cell

import (
	"fmt"
	"math/big"
)

// Slice is a read cursor over a cell. Reading never changes the cell itself.
type Slice struct {
	cell   *Cell
	bitPos int
	refPos int
}

func (s *Slice) BitsLeft() int {
	return s.cell.bits - s.bitPos
}

func (s *Slice) RefsLeft() int {
	return len(s.cell.refs) - s.refPos
}

func (s *Slice) IsEmpty() bool {
	return s.BitsLeft() == 0 && s.RefsLeft() == 0
}

func (s *Slice) Copy() *Slice {
	cp := *s
	return &cp
}

func (s *Slice) need(bits int) error {
	if bits < 0 || bits > s.BitsLeft() {
		return fmt.Errorf("%w: %d bits requested, %d left", ErrUnderflow, bits, s.BitsLeft())
	}
	return nil
}

func (s *Slice) next() bool {
	v := s.cell.data[s.bitPos/8]&(0x80>>(s.bitPos%8)) != 0
	s.bitPos++
	return v
}

func (s *Slice) LoadBit() (bool, error) {
	if err := s.need(1); err != nil {
		return false, err
	}
	return s.next(), nil
}

func (s *Slice) LoadUint(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: uint width %d", ErrValueRange, n)
	}
	if err := s.need(n); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if s.next() {
			v |= 1
		}
	}
	return v, nil
}

func (s *Slice) PreloadUint(n int) (uint64, error) {
	return s.Copy().LoadUint(n)
}

func (s *Slice) LoadInt(n int) (int64, error) {
	if n < 1 || n > 64 {
		return 0, fmt.Errorf("%w: int width %d", ErrValueRange, n)
	}
	v, err := s.LoadUint(n)
	if err != nil {
		return 0, err
	}
	if n < 64 && v&(1<<(n-1)) != 0 {
		v |= ^uint64(0) << n
	}
	return int64(v), nil
}

func (s *Slice) LoadBigUint(n int) (*big.Int, error) {
	if n < 0 || n > 256 {
		return nil, fmt.Errorf("%w: uint width %d", ErrValueRange, n)
	}
	bits, err := s.LoadBits(n)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(bits.buf)
	if rem := n % 8; rem != 0 {
		v.Rsh(v, uint(8-rem))
	}
	return v, nil
}

func (s *Slice) LoadBigInt(n int) (*big.Int, error) {
	if n < 1 || n > 257 {
		return nil, fmt.Errorf("%w: int width %d", ErrValueRange, n)
	}
	if err := s.need(n); err != nil {
		return nil, err
	}
	bits, _ := s.LoadBits(n)
	v := new(big.Int).SetBytes(bits.buf)
	if rem := n % 8; rem != 0 {
		v.Rsh(v, uint(8-rem))
	}
	if bits.Bit(0) {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	}
	return v, nil
}

func (s *Slice) LoadBits(n int) (BitString, error) {
	if err := s.need(n); err != nil {
		return BitString{}, err
	}
	res := BitString{buf: make([]byte, 0, (n+7)/8)}
	for i := 0; i < n; i++ {
		res.append(s.next())
	}
	return res, nil
}

func (s *Slice) LoadBytes(n int) ([]byte, error) {
	bits, err := s.LoadBits(n * 8)
	if err != nil {
		return nil, err
	}
	return bits.buf, nil
}

func (s *Slice) SkipBits(n int) error {
	if err := s.need(n); err != nil {
		return err
	}
	s.bitPos += n
	return nil
}

func (s *Slice) LoadRef() (*Cell, error) {
	if s.RefsLeft() == 0 {
		return nil, fmt.Errorf("%w: no references left", ErrUnderflow)
	}
	r := s.cell.refs[s.refPos]
	s.refPos++
	return r, nil
}

func (s *Slice) LoadMaybeRef() (*Cell, error) {
	ok, err := s.LoadBit()
	if err != nil || !ok {
		return nil, err
	}
	return s.LoadRef()
}

// LoadCoins reads a VarUInteger 16.
func (s *Slice) LoadCoins() (*big.Int, error) {
	l, err := s.LoadUint(4)
	if err != nil {
		return nil, err
	}
	return s.LoadBigUint(int(l) * 8)
}

// LoadRemainingBits drains the unread bits. With recurse set it continues into
// the next reference of every visited cell, following snake-encoded data.
func (s *Slice) LoadRemainingBits(recurse bool) (BitString, error) {
	res, err := s.LoadBits(s.BitsLeft())
	if err != nil {
		return BitString{}, err
	}
	if !recurse {
		return res, nil
	}
	cur := s
	for cur.RefsLeft() > 0 {
		r, err := cur.LoadRef()
		if err != nil {
			return BitString{}, err
		}
		cur = r.BeginParse()
		bits, err := cur.LoadBits(cur.BitsLeft())
		if err != nil {
			return BitString{}, err
		}
		res.appendBits(bits)
	}
	return res, nil
}

// ToCell copies the unread part into a new cell.
func (s *Slice) ToCell() (*Cell, error) {
	return NewBuilder().StoreSlice(s).EndCell()
}
