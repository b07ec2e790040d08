package layout

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinBits is the smallest supported segment size exponent (2 elements).
	MinBits = 1
	// MaxBits is the largest supported segment size exponent (1 Gi elements).
	MaxBits = 30
	// MaxSegments bounds the segment count to the 32-bit range.
	MaxSegments = math.MaxInt32
)

// ErrInvalidBits is returned when the segment size exponent is outside [MinBits, MaxBits].
var ErrInvalidBits = errors.New("layout: invalid segment bits")

// Layout is the immutable addressing scheme of a segmented array.
type Layout struct {
	bits uint8
	size int64
	mask int64
}

// New creates a Layout with segments of 1<<bits elements.
func New(bits uint8) (Layout, error) {
	if bits < MinBits || bits > MaxBits {
		return Layout{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidBits, bits, MinBits, MaxBits)
	}
	size := int64(1) << bits
	return Layout{
		bits: bits,
		size: size,
		mask: size - 1,
	}, nil
}

// Bits returns log2 of the segment size.
func (l Layout) Bits() uint8 {
	return l.bits
}

// SegmentSize returns the number of elements in a full segment.
func (l Layout) SegmentSize() int {
	return int(l.size)
}

// MaxSize returns the largest logical size this layout can address.
func (l Layout) MaxSize() int64 {
	return l.size * MaxSegments
}

// SegmentOf returns the segment holding index.
func (l Layout) SegmentOf(index int64) int {
	return int(index >> l.bits)
}

// OffsetOf returns the position of index inside its segment.
func (l Layout) OffsetOf(index int64) int {
	return int(index & l.mask)
}

// Index is the inverse of SegmentOf/OffsetOf.
func (l Layout) Index(segment, offset int) int64 {
	return int64(segment)<<l.bits | int64(offset)
}

// SegmentCount returns ceil(size / SegmentSize()).
func (l Layout) SegmentCount(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size-1)>>l.bits) + 1
}

// SegmentLen returns the length of segment seg in an array of the given size.
// Every segment but the last is full; the last one holds the remainder, or a
// full segment when size divides evenly.
func (l Layout) SegmentLen(seg int, size int64) int {
	n := l.SegmentCount(size)
	switch {
	case seg < 0 || seg >= n:
		return 0
	case seg < n-1:
		return int(l.size)
	}
	if rem := size & l.mask; rem != 0 {
		return int(rem)
	}
	return int(l.size)
}

// Validate reports whether size is addressable by this layout.
func (l Layout) Validate(size int64) bool {
	return size > 0 && size <= l.MaxSize()
}
