package bigarray

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/bigarray/internal/layout"
	"github.com/hupe1980/bigarray/offheap"
)

var (
	// ErrInvalidSize is returned when a size is not positive or exceeds the layout maximum.
	ErrInvalidSize = errors.New("invalid size")

	// ErrIndexOutOfRange is returned (or carried by a panic) when an index is outside the array.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidShape is returned when borrowed segments are not uniformly sized.
	ErrInvalidShape = errors.New("invalid segment shape")

	// ErrUnsupportedElementStride is returned when an atomic view is requested
	// for an element type that cannot be accessed with word-sized atomics.
	ErrUnsupportedElementStride = errors.New("unsupported element stride")

	// ErrSizeMismatch is returned when two arrays must have the same size but do not.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrNoCurrentElement is returned by Cursor.Set before Next or Previous was called.
	ErrNoCurrentElement = errors.New("cursor has no current element")

	// ErrClosed is returned by OffHeapBytes.TryGet and TrySet after Close.
	ErrClosed = errors.New("array closed")
)

// IndexError reports an index outside the valid range of an array.
//
// Get and Set panic with an *IndexError, TryGet and TrySet return one.
type IndexError struct {
	Index int64
	Size  int64
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// SizeError reports a requested size outside [1, Max].
type SizeError struct {
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("invalid size %d: must be in [1, %d]", e.Size, e.Max)
}

func (e *SizeError) Unwrap() error { return ErrInvalidSize }

// ShapeError reports a borrowed segment whose length breaks the uniform layout.
type ShapeError struct {
	Segment int
	Len     int
	Want    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("segment %d has %d elements, want %d", e.Segment, e.Len, e.Want)
}

func (e *ShapeError) Unwrap() error { return ErrInvalidShape }

// StrideError reports an element type unusable by an atomic view.
type StrideError struct {
	Type   reflect.Type
	Stride uintptr
	Reason string
}

func (e *StrideError) Error() string {
	return fmt.Sprintf("unsupported element %v (stride %d): %s", e.Type, e.Stride, e.Reason)
}

func (e *StrideError) Unwrap() error { return ErrUnsupportedElementStride }

// translateError maps subpackage errors onto the public sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, layout.ErrInvalidBits), errors.Is(err, offheap.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	return err
}
