package cell

import (
	"encoding/hex"
	"errors"
	"github.com/stretchr/testify/require"
	tuCell "github.com/xssnick/tonutils-go/tvm/cell"
	"math/big"
	"math/rand"
	"testing"
)

func TestEmptyCellHash(t *testing.T) {
	c, err := NewBuilder().EndCell()
	require.NoError(t, err)
	h := c.Hash()
	require.Equal(t, "96a296d224f285c67bee93c30f8a309157f0daa35dc5b87e410b78630a09cfc7", hex.EncodeToString(h[:]))
	require.Equal(t, uint16(0), c.Depth())
	require.True(t, c.IsEmpty())
	require.True(t, EmptyCell().Equal(c))
}

func TestHashMatchesTonutils(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		bits  int
	}{
		{"byte", 0xAB, 8},
		{"odd width", 5, 3},
		{"full word", 0xFFFFFFFFFFFFFFFF, 64},
		{"single bit", 1, 1},
		{"op code", 0x5fcc3d14, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, err := NewBuilder().StoreUint(tt.value, tt.bits).EndCell()
			require.NoError(t, err)
			root, err := NewBuilder().StoreUint(tt.value, tt.bits).StoreRef(child).StoreRef(child).EndCell()
			require.NoError(t, err)

			tuChild := tuCell.BeginCell().MustStoreUInt(tt.value, uint(tt.bits)).EndCell()
			tuRoot := tuCell.BeginCell().MustStoreUInt(tt.value, uint(tt.bits)).MustStoreRef(tuChild).MustStoreRef(tuChild).EndCell()

			h := root.Hash()
			require.Equal(t, tuRoot.Hash(), h[:])
			require.Equal(t, uint16(1), root.Depth())
		})
	}
}

func TestUintRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 1; n <= 64; n++ {
		v := r.Uint64()
		if n < 64 {
			v &= 1<<n - 1
		}
		c, err := NewBuilder().StoreUint(v, n).EndCell()
		require.NoError(t, err)
		require.Equal(t, n, c.BitLen())
		got, err := c.BeginParse().LoadUint(n)
		require.NoError(t, err)
		require.Equal(t, v, got, "width %d", n)
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, -128, 1 << 40, -(1 << 40)}
	for _, v := range values {
		c, err := NewBuilder().StoreInt(v, 64).StoreInt(v%64, 8).EndCell()
		require.NoError(t, err)
		s := c.BeginParse()
		got, err := s.LoadInt(64)
		require.NoError(t, err)
		require.Equal(t, v, got)
		small, err := s.LoadInt(8)
		require.NoError(t, err)
		require.Equal(t, v%64, small)
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for n := 1; n <= 256; n += 17 {
		u := new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), uint(n)))
		neg := new(big.Int).Neg(new(big.Int).Rsh(u, 1))
		c, err := NewBuilder().StoreBigUint(u, n).StoreBigInt(neg, n+1).EndCell()
		require.NoError(t, err)
		s := c.BeginParse()
		gotU, err := s.LoadBigUint(n)
		require.NoError(t, err)
		require.Equal(t, 0, u.Cmp(gotU), "width %d", n)
		gotNeg, err := s.LoadBigInt(n + 1)
		require.NoError(t, err)
		require.Equal(t, 0, neg.Cmp(gotNeg), "width %d", n+1)
	}
}

func TestCoinsRoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1_000_000_000),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 120), big.NewInt(1)),
	}
	for _, v := range values {
		c, err := NewBuilder().StoreCoins(v).EndCell()
		require.NoError(t, err)
		got, err := c.BeginParse().LoadCoins()
		require.NoError(t, err)
		require.Equal(t, 0, v.Cmp(got))
	}
	_, err := NewBuilder().StoreCoins(new(big.Int).Lsh(big.NewInt(1), 120)).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
	require.ErrorIs(t, err, ErrCodec)
}

func TestBuilderOverflow(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxBits; i++ {
		b.StoreBit(i%2 == 0)
	}
	c, err := b.EndCell()
	require.NoError(t, err)
	require.Equal(t, MaxBits, c.BitLen())

	_, err = b.StoreBit(true).EndCell()
	require.ErrorIs(t, err, ErrOverflow)

	b = NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		b.StoreRef(EmptyCell())
	}
	require.NoError(t, b.Err())
	_, err = b.StoreRef(EmptyCell()).EndCell()
	require.ErrorIs(t, err, ErrOverflow)
}

func TestValueRange(t *testing.T) {
	_, err := NewBuilder().StoreUint(256, 8).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
	_, err = NewBuilder().StoreInt(128, 8).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
	_, err = NewBuilder().StoreBigInt(big.NewInt(-129), 8).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
	_, err = NewBuilder().StoreRef(nil).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
}

func TestStoreUintNeverTruncates(t *testing.T) {
	// tonutils keeps the low bits of a value that does not fit
	tu := tuCell.BeginCell()
	require.NoError(t, tu.StoreUInt(300, 8))
	v, err := tu.EndCell().BeginParse().LoadUInt(8)
	require.NoError(t, err)
	require.Equal(t, uint64(44), v)

	_, err = NewBuilder().StoreUint(300, 8).EndCell()
	require.ErrorIs(t, err, ErrValueRange)
}

func TestSliceUnderflow(t *testing.T) {
	c, err := NewBuilder().StoreUint(7, 3).EndCell()
	require.NoError(t, err)
	s := c.BeginParse()
	_, err = s.LoadUint(4)
	require.ErrorIs(t, err, ErrUnderflow)
	require.Equal(t, 3, s.BitsLeft())
	_, err = s.LoadRef()
	require.True(t, errors.Is(err, ErrUnderflow))
	_, err = s.LoadUint(3)
	require.NoError(t, err)
	require.True(t, s.IsEmpty())
}

func TestSliceDoesNotMutateCell(t *testing.T) {
	ref := EmptyCell()
	c, err := NewBuilder().StoreUint(0xDEAD, 16).StoreRef(ref).EndCell()
	require.NoError(t, err)
	s := c.BeginParse()
	_, err = s.LoadUint(16)
	require.NoError(t, err)
	_, err = s.LoadRef()
	require.NoError(t, err)
	again, err := c.BeginParse().LoadUint(16)
	require.NoError(t, err)
	require.Equal(t, uint64(0xDEAD), again)
	require.Equal(t, 1, c.RefCount())
}

func TestStoreBuilderAndSlice(t *testing.T) {
	inner := NewBuilder().StoreUint(0xA, 4).StoreRef(EmptyCell())
	c, err := NewBuilder().StoreBit(true).StoreBuilder(inner).EndCell()
	require.NoError(t, err)
	require.Equal(t, 5, c.BitLen())
	require.Equal(t, 1, c.RefCount())

	s := c.BeginParse()
	_, err = s.LoadBit()
	require.NoError(t, err)
	cp, err := s.ToCell()
	require.NoError(t, err)
	require.Equal(t, 4, cp.BitLen())
	require.Equal(t, 4, s.BitsLeft())

	rebuilt, err := c.ToBuilder().EndCell()
	require.NoError(t, err)
	require.True(t, c.Equal(rebuilt))
}

func TestLoadRemainingBits(t *testing.T) {
	tail, err := NewBuilder().StoreBytes([]byte("world")).EndCell()
	require.NoError(t, err)
	c, err := NewBuilder().StoreBytes([]byte("hello ")).StoreRef(tail).EndCell()
	require.NoError(t, err)

	flat, err := c.BeginParse().LoadRemainingBits(false)
	require.NoError(t, err)
	require.Equal(t, "hello ", string(flat.Bytes()))

	all, err := c.BeginParse().LoadRemainingBits(true)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(all.Bytes()))
}

func TestCellString(t *testing.T) {
	c, err := NewBuilder().StoreUint(0xAB, 8).StoreUint(1, 2).StoreRef(EmptyCell()).EndCell()
	require.NoError(t, err)
	require.Equal(t, "x{AB6_}\n x{}\n", c.String())
}
