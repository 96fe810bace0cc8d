package blockchain

import (
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
)

type StackKind int

const (
	StackNull StackKind = iota
	StackInt
	StackCell
	StackSlice
)

func (k StackKind) String() string {
	switch k {
	case StackNull:
		return "null"
	case StackInt:
		return "int"
	case StackCell:
		return "cell"
	case StackSlice:
		return "slice"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// StackValue is a single get-method argument or result. Slices keep their unread part as a cell.
type StackValue struct {
	Kind StackKind
	Int  *big.Int
	Cell *cell.Cell
}

// Stack is ordered the way values are declared by the get-method: index 0 is the first value.
type Stack []StackValue

func IntValue(v int64) StackValue {
	return StackValue{Kind: StackInt, Int: big.NewInt(v)}
}

func BigIntValue(v *big.Int) StackValue {
	return StackValue{Kind: StackInt, Int: new(big.Int).Set(v)}
}

func CellValue(c *cell.Cell) StackValue {
	return StackValue{Kind: StackCell, Cell: c}
}

func SliceValue(c *cell.Cell) StackValue {
	return StackValue{Kind: StackSlice, Cell: c}
}

func (s Stack) value(i int, kinds ...StackKind) (StackValue, error) {
	if i < 0 || i >= len(s) {
		return StackValue{}, fmt.Errorf("%w: stack depth %d, index %d", core.ErrInvalidResponseShape, len(s), i)
	}
	for _, k := range kinds {
		if s[i].Kind == k {
			return s[i], nil
		}
	}
	return StackValue{}, fmt.Errorf("%w: unexpected %v at index %d", core.ErrInvalidResponseShape, s[i].Kind, i)
}

func (s Stack) Int(i int) (*big.Int, error) {
	v, err := s.value(i, StackInt)
	if err != nil {
		return nil, err
	}
	return v.Int, nil
}

func (s Stack) Bool(i int) (bool, error) {
	v, err := s.Int(i)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

func (s Stack) Cell(i int) (*cell.Cell, error) {
	v, err := s.value(i, StackCell, StackSlice)
	if err != nil {
		return nil, err
	}
	return v.Cell, nil
}

func (s Stack) Slice(i int) (*cell.Slice, error) {
	c, err := s.Cell(i)
	if err != nil {
		return nil, err
	}
	return c.BeginParse(), nil
}

// Address reads a MsgAddress slice, addr_none gives nil.
func (s Stack) Address(i int) (*core.Address, error) {
	sl, err := s.Slice(i)
	if err != nil {
		return nil, err
	}
	a, err := core.LoadAddress(sl)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", core.ErrInvalidResponseShape, i, err)
	}
	return a, nil
}
