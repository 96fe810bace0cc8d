package cell

import (
	"fmt"
	"unicode/utf8"
)

const snakeChunk = 127

// StoreSnake writes data into the free space of the builder and continues in a
// chain of referenced cells holding up to 127 bytes each.
func (b *Builder) StoreSnake(data []byte) *Builder {
	if b.err != nil {
		return b
	}
	head := b.BitsLeft() / 8
	if head >= len(data) {
		return b.StoreBytes(data)
	}
	tail, err := snakeChain(data[head:])
	if err != nil {
		return b.fail(err)
	}
	return b.StoreBytes(data[:head]).StoreRef(tail)
}

func (b *Builder) StoreStringSnake(s string) *Builder {
	return b.StoreSnake([]byte(s))
}

func snakeChain(data []byte) (*Cell, error) {
	var next *Cell
	start := (len(data) - 1) / snakeChunk * snakeChunk
	for ; start >= 0; start -= snakeChunk {
		end := min(start+snakeChunk, len(data))
		b := NewBuilder().StoreBytes(data[start:end])
		if next != nil {
			b.StoreRef(next)
		}
		c, err := b.EndCell()
		if err != nil {
			return nil, err
		}
		next = c
	}
	return next, nil
}

// LoadSnake reads the remaining bytes of the slice and of its snake tail.
func (s *Slice) LoadSnake() ([]byte, error) {
	bits, err := s.LoadRemainingBits(true)
	if err != nil {
		return nil, err
	}
	if bits.Len()%8 != 0 {
		return nil, fmt.Errorf("%w: snake data of %d bits", ErrBadLayout, bits.Len())
	}
	return bits.Bytes(), nil
}

func (s *Slice) LoadStringSnake() (string, error) {
	data, err := s.LoadSnake()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 string", ErrBadLayout)
	}
	return string(data), nil
}
