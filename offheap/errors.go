package offheap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned when the requested size is not positive or not addressable.
	ErrInvalidSize = errors.New("offheap: invalid size")
	// ErrIndexOutOfRange is returned by checked accessors for indices outside [0, size).
	ErrIndexOutOfRange = errors.New("offheap: index out of range")
	// ErrClosed is returned by checked accessors after Close.
	ErrClosed = errors.New("offheap: buffer is closed")
)

// RangeError describes an out-of-range byte index.
type RangeError struct {
	Index int64
	Size  int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("offheap: index %d out of range [0, %d)", e.Index, e.Size)
}

func (e *RangeError) Unwrap() error { return ErrIndexOutOfRange }
