package cell

import (
	"fmt"
	"math/bits"
	"sort"
)

// Dict builds a HashmapE with fixed-width unsigned keys of up to 64 bits.
// Values are stored inline in the leaves.
type Dict struct {
	keyBits int
	items   map[uint64]*Cell
}

type DictItem struct {
	Key   uint64
	Value *Cell
}

func NewDict(keyBits int) *Dict {
	return &Dict{keyBits: keyBits, items: make(map[uint64]*Cell)}
}

func (d *Dict) Len() int {
	return len(d.items)
}

func (d *Dict) Set(key uint64, value *Cell) error {
	if d.keyBits < 1 || d.keyBits > 64 {
		return fmt.Errorf("%w: dict key width %d", ErrValueRange, d.keyBits)
	}
	if d.keyBits < 64 && key>>d.keyBits != 0 {
		return fmt.Errorf("%w: key %d does not fit %d bits", ErrValueRange, key, d.keyBits)
	}
	if value == nil {
		return fmt.Errorf("%w: nil dict value", ErrValueRange)
	}
	d.items[key] = value
	return nil
}

func (d *Dict) Items() []DictItem {
	res := make([]DictItem, 0, len(d.items))
	for k, v := range d.items {
		res = append(res, DictItem{Key: k, Value: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

// ToCell returns the root of the Hashmap or nil for an empty dictionary.
func (d *Dict) ToCell() (*Cell, error) {
	if len(d.items) == 0 {
		return nil, nil
	}
	return buildEdge(d.Items(), d.keyBits)
}

// StoreTo writes the dictionary as HashmapE: a presence bit and the root reference.
func (d *Dict) StoreTo(b *Builder) *Builder {
	root, err := d.ToCell()
	if err != nil {
		return b.fail(err)
	}
	return b.StoreMaybeRef(root)
}

func keyBit(key uint64, n, i int) uint64 {
	return key >> (n - 1 - i) & 1
}

func buildEdge(items []DictItem, n int) (*Cell, error) {
	l := n
	if len(items) > 1 {
		first, last := items[0].Key, items[len(items)-1].Key
		l = 0
		for l < n && keyBit(first, n, l) == keyBit(last, n, l) {
			l++
		}
	}
	var label uint64
	if l > 0 {
		label = items[0].Key >> (n - l)
	}
	b := NewBuilder()
	storeLabel(b, label, l, n)
	if l == n {
		b.StoreSlice(items[0].Value.BeginParse())
		return b.EndCell()
	}
	m := n - l - 1
	split := sort.Search(len(items), func(i int) bool { return keyBit(items[i].Key, n, l) == 1 })
	left, right := make([]DictItem, split), make([]DictItem, len(items)-split)
	mask := uint64(1)<<m - 1
	for i, it := range items[:split] {
		left[i] = DictItem{Key: it.Key & mask, Value: it.Value}
	}
	for i, it := range items[split:] {
		right[i] = DictItem{Key: it.Key & mask, Value: it.Value}
	}
	lc, err := buildEdge(left, m)
	if err != nil {
		return nil, err
	}
	rc, err := buildEdge(right, m)
	if err != nil {
		return nil, err
	}
	return b.StoreRef(lc).StoreRef(rc).EndCell()
}

// storeLabel writes the shortest of hml_short, hml_long and hml_same for an l-bit label.
func storeLabel(b *Builder, label uint64, l, m int) {
	lenBits := bits.Len(uint(m))
	short := 2*l + 2
	long := 2 + lenBits + l
	same := -1
	if l > 0 && (label == 0 || label == 1<<l-1) {
		same = 3 + lenBits
	}
	switch {
	case same >= 0 && same < short && same < long:
		b.StoreUint(0b11, 2).StoreBit(label&1 == 1).StoreUint(uint64(l), lenBits)
	case short <= long:
		b.StoreBit(false)
		for i := 0; i < l; i++ {
			b.StoreBit(true)
		}
		b.StoreBit(false).StoreUint(label, l)
	default:
		b.StoreUint(0b10, 2).StoreUint(uint64(l), lenBits).StoreUint(label, l)
	}
}

// LoadDict reads a HashmapE with keyBits-wide keys, items come back in ascending key order.
func LoadDict(s *Slice, keyBits int) ([]DictItem, error) {
	if keyBits < 1 || keyBits > 64 {
		return nil, fmt.Errorf("%w: dict key width %d", ErrValueRange, keyBits)
	}
	root, err := s.LoadMaybeRef()
	if err != nil || root == nil {
		return nil, err
	}
	var res []DictItem
	err = parseEdge(root, 0, keyBits, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func parseEdge(c *Cell, prefix uint64, n int, res *[]DictItem) error {
	s := c.BeginParse()
	label, l, err := loadLabel(s, n)
	if err != nil {
		return err
	}
	if l > 0 {
		prefix = prefix<<l | label
	}
	if l == n {
		v, err := s.ToCell()
		if err != nil {
			return err
		}
		*res = append(*res, DictItem{Key: prefix, Value: v})
		return nil
	}
	left, err := s.LoadRef()
	if err != nil {
		return err
	}
	right, err := s.LoadRef()
	if err != nil {
		return err
	}
	if err := parseEdge(left, prefix<<1, n-l-1, res); err != nil {
		return err
	}
	return parseEdge(right, prefix<<1|1, n-l-1, res)
}

func loadLabel(s *Slice, m int) (uint64, int, error) {
	lenBits := bits.Len(uint(m))
	long, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	if !long {
		l := 0
		for {
			one, err := s.LoadBit()
			if err != nil {
				return 0, 0, err
			}
			if !one {
				break
			}
			l++
		}
		if l > m {
			return 0, 0, fmt.Errorf("%w: label of %d bits for %d-bit key", ErrBadLayout, l, m)
		}
		v, err := s.LoadUint(l)
		return v, l, err
	}
	same, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	if !same {
		l, err := s.LoadUint(lenBits)
		if err != nil {
			return 0, 0, err
		}
		if int(l) > m {
			return 0, 0, fmt.Errorf("%w: label of %d bits for %d-bit key", ErrBadLayout, l, m)
		}
		v, err := s.LoadUint(int(l))
		return v, int(l), err
	}
	bit, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	l, err := s.LoadUint(lenBits)
	if err != nil {
		return 0, 0, err
	}
	if int(l) > m {
		return 0, 0, fmt.Errorf("%w: label of %d bits for %d-bit key", ErrBadLayout, l, m)
	}
	var v uint64
	if bit && l > 0 {
		v = 1<<l - 1
	}
	return v, int(l), nil
}
