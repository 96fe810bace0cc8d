package cell

import (
	"errors"
	"fmt"
)

// ErrCodec is the base of every error produced while writing or reading cells.
var ErrCodec = errors.New("cell codec")

var (
	ErrOverflow   = fmt.Errorf("%w: overflow", ErrCodec)
	ErrUnderflow  = fmt.Errorf("%w: underflow", ErrCodec)
	ErrValueRange = fmt.Errorf("%w: value out of range", ErrCodec)
	ErrBadLayout  = fmt.Errorf("%w: bad layout", ErrCodec)
)
