package cell

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/tonkeeper/tongo/boc"
)

// FromTongo converts a tongo cell tree. Shared subtrees are converted once.
func FromTongo(c *boc.Cell) (*Cell, error) {
	return fromTongo(c, make(map[*boc.Cell]*Cell))
}

func fromTongo(c *boc.Cell, seen map[*boc.Cell]*Cell) (*Cell, error) {
	if res, ok := seen[c]; ok {
		return res, nil
	}
	if c.IsExotic() {
		return nil, fmt.Errorf("%w: exotic cells are not supported", ErrBadLayout)
	}
	c.ResetCounters()
	defer c.ResetCounters()
	b := NewBuilder()
	for i := 0; i < c.BitSize(); i++ {
		bit, err := c.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadLayout, err)
		}
		b.StoreBit(bit)
	}
	for _, r := range c.Refs() {
		child, err := fromTongo(r, seen)
		if err != nil {
			return nil, err
		}
		b.StoreRef(child)
	}
	res, err := b.EndCell()
	if err != nil {
		return nil, err
	}
	seen[c] = res
	return res, nil
}

func (c *Cell) ToTongo() (*boc.Cell, error) {
	return c.toTongo(make(map[*Cell]*boc.Cell))
}

func (c *Cell) toTongo(seen map[*Cell]*boc.Cell) (*boc.Cell, error) {
	if res, ok := seen[c]; ok {
		return res, nil
	}
	res := boc.NewCell()
	bits := c.Bits()
	for i := 0; i < bits.Len(); i++ {
		if err := res.WriteBit(bits.Bit(i)); err != nil {
			return nil, err
		}
	}
	for _, r := range c.refs {
		child, err := r.toTongo(seen)
		if err != nil {
			return nil, err
		}
		if err := res.AddRef(child); err != nil {
			return nil, err
		}
	}
	seen[c] = res
	return res, nil
}

// FromBoc decodes a bag of cells and returns its first root.
func FromBoc(data []byte) (*Cell, error) {
	roots, err := boc.DeserializeBoc(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLayout, err)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: boc without roots", ErrBadLayout)
	}
	return FromTongo(roots[0])
}

func FromBocBase64(s string) (*Cell, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadLayout, err)
		}
	}
	return FromBoc(data)
}

func FromBocHex(s string) (*Cell, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLayout, err)
	}
	return FromBoc(data)
}

func MustFromBocBase64(s string) *Cell {
	c, err := FromBocBase64(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cell) ToBoc() ([]byte, error) {
	t, err := c.ToTongo()
	if err != nil {
		return nil, err
	}
	return t.ToBoc()
}

func (c *Cell) ToBocBase64() (string, error) {
	data, err := c.ToBoc()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *Cell) MarshalJSON() ([]byte, error) {
	s, err := c.ToBocBase64()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return errors.New("empty boc")
	}
	res, err := FromBocBase64(s)
	if err != nil {
		return err
	}
	*c = *res
	return nil
}
