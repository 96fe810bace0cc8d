package cell

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDictRoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 3, 17, 254} {
		d := NewDict(16)
		for i := 0; i < size; i++ {
			v, err := NewBuilder().StoreUint(uint64(i%256), 8).StoreRef(EmptyCell()).EndCell()
			require.NoError(t, err)
			require.NoError(t, d.Set(uint64(i), v))
		}
		c, err := NewBuilder().StoreUint(42, 32).StoreBuilder(d.StoreTo(NewBuilder())).EndCell()
		require.NoError(t, err)

		s := c.BeginParse()
		_, err = s.LoadUint(32)
		require.NoError(t, err)
		items, err := LoadDict(s, 16)
		require.NoError(t, err)
		require.Len(t, items, size)
		for i, it := range items {
			require.Equal(t, uint64(i), it.Key)
			vs := it.Value.BeginParse()
			mode, err := vs.LoadUint(8)
			require.NoError(t, err)
			require.Equal(t, uint64(i%256), mode)
			require.Equal(t, 1, vs.RefsLeft())
		}
	}
}

func TestDictSparseKeys(t *testing.T) {
	d := NewDict(32)
	keys := []uint64{0, 7, 0xFFFFFFFF, 0x80000000, 12345}
	for _, k := range keys {
		v, err := NewBuilder().StoreUint(k, 32).EndCell()
		require.NoError(t, err)
		require.NoError(t, d.Set(k, v))
	}
	root, err := d.ToCell()
	require.NoError(t, err)
	c, err := NewBuilder().StoreMaybeRef(root).EndCell()
	require.NoError(t, err)
	items, err := LoadDict(c.BeginParse(), 32)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 7, 12345, 0x80000000, 0xFFFFFFFF}, []uint64{items[0].Key, items[1].Key, items[2].Key, items[3].Key, items[4].Key})
	for _, it := range items {
		v, err := it.Value.BeginParse().LoadUint(32)
		require.NoError(t, err)
		require.Equal(t, it.Key, v)
	}
}

func TestEmptyDict(t *testing.T) {
	d := NewDict(16)
	c, err := d.StoreTo(NewBuilder()).EndCell()
	require.NoError(t, err)
	require.Equal(t, 1, c.BitLen())
	items, err := LoadDict(c.BeginParse(), 16)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDictKeyRange(t *testing.T) {
	d := NewDict(8)
	require.ErrorIs(t, d.Set(256, EmptyCell()), ErrValueRange)
}
