package cell

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	MaxBits = 1023
	MaxRefs = 4
)

// Cell is an immutable node of at most 1023 data bits and 4 child references.
// The representation hash and depth are computed once when the cell is built.
type Cell struct {
	data  []byte
	bits  int
	refs  []*Cell
	hash  [32]byte
	depth uint16
}

func newCell(data []byte, bits int, refs []*Cell) *Cell {
	c := &Cell{
		data: NewBitString(data, bits).buf,
		bits: bits,
		refs: append([]*Cell(nil), refs...),
	}
	for _, r := range c.refs {
		if r.depth+1 > c.depth {
			c.depth = r.depth + 1
		}
	}
	c.hash = sha256.Sum256(c.representation())
	return c
}

// EmptyCell returns a cell without bits and references.
func EmptyCell() *Cell {
	return newCell(nil, 0, nil)
}

func (c *Cell) descriptors() (byte, byte) {
	d1 := byte(len(c.refs)) // ordinary cell of level 0
	d2 := byte(c.bits/8 + (c.bits+7)/8)
	return d1, d2
}

func (c *Cell) representation() []byte {
	d1, d2 := c.descriptors()
	res := make([]byte, 0, 2+len(c.data)+len(c.refs)*34)
	res = append(res, d1, d2)
	data := make([]byte, len(c.data))
	copy(data, c.data)
	if rem := c.bits % 8; rem != 0 {
		data[len(data)-1] |= 0x80 >> rem
	}
	res = append(res, data...)
	for _, r := range c.refs {
		res = binary.BigEndian.AppendUint16(res, r.depth)
	}
	for _, r := range c.refs {
		res = append(res, r.hash[:]...)
	}
	return res
}

func (c *Cell) BitLen() int {
	return c.bits
}

func (c *Cell) RefCount() int {
	return len(c.refs)
}

// Ref returns the i-th child or nil when there is no such reference.
func (c *Cell) Ref(i int) *Cell {
	if i < 0 || i >= len(c.refs) {
		return nil
	}
	return c.refs[i]
}

func (c *Cell) Refs() []*Cell {
	return append([]*Cell(nil), c.refs...)
}

func (c *Cell) Bits() BitString {
	return NewBitString(c.data, c.bits)
}

func (c *Cell) IsEmpty() bool {
	return c.bits == 0 && len(c.refs) == 0
}

func (c *Cell) Hash() [32]byte {
	return c.hash
}

func (c *Cell) Depth() uint16 {
	return c.depth
}

func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.hash == o.hash
}

func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c}
}

// ToBuilder returns a builder prefilled with the cell contents.
func (c *Cell) ToBuilder() *Builder {
	return NewBuilder().StoreSlice(c.BeginParse())
}

// String dumps the tree in the x{...} notation used by fift.
func (c *Cell) String() string {
	var sb strings.Builder
	c.dump(&sb, 0)
	return sb.String()
}

func (c *Cell) dump(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat(" ", indent))
	fmt.Fprintf(sb, "x{%s}\n", c.Bits().String())
	for _, r := range c.refs {
		r.dump(sb, indent+1)
	}
}
