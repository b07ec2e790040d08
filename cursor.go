package bigarray

// Cursor walks an Array sequentially, caching the segment it is in so that
// each step costs an increment and a bounds check rather than a division.
//
// The cursor sits between two elements. Next returns the element after the
// position and moves forward; Previous moves backward and returns the element
// it passed. A Cursor is not safe for concurrent use, and it goes stale if
// the array is resized.
type Cursor[T any] struct {
	arr   *Array[T]
	index int64 // logical position, in [0, size]
	seg   int   // segment of index (len(segments) when index == size)
	off   int   // offset of index inside seg
	cur   []T   // segments[seg], or nil past the end

	lastSeg int // segment of the element returned last, -1 if none
	lastOff int
}

// Cursor returns a cursor positioned before the element at index, so that the
// first Next returns Get(index). index may equal Size(), in which case only
// Previous is available. Other indices fail with an *IndexError.
func (a *Array[T]) Cursor(index int64) (*Cursor[T], error) {
	if index < 0 || index > a.size {
		return nil, &IndexError{Index: index, Size: a.size}
	}
	return a.cursorAt(index), nil
}

func (a *Array[T]) cursorAt(index int64) *Cursor[T] {
	c := &Cursor[T]{arr: a}
	c.moveTo(index)
	return c
}

func (c *Cursor[T]) moveTo(index int64) {
	c.index = index
	c.seg = c.arr.layout.SegmentOf(index)
	c.off = c.arr.layout.OffsetOf(index)
	c.cur = nil
	if c.seg < len(c.arr.segments) {
		c.cur = c.arr.segments[c.seg]
	}
	c.lastSeg = -1
}

// HasNext reports whether Next would return an element.
func (c *Cursor[T]) HasNext() bool {
	return c.index < c.arr.size
}

// HasPrevious reports whether Previous would return an element.
func (c *Cursor[T]) HasPrevious() bool {
	return c.index > 0
}

// Index returns the current position.
func (c *Cursor[T]) Index() int64 {
	return c.index
}

// NextIndex returns the index of the element Next would return.
func (c *Cursor[T]) NextIndex() int64 {
	return c.index
}

// PreviousIndex returns the index of the element Previous would return, or -1
// at the start of the array.
func (c *Cursor[T]) PreviousIndex() int64 {
	return c.index - 1
}

// Next returns the element at the current position and advances by one.
// It panics with an *IndexError when HasNext is false.
func (c *Cursor[T]) Next() T {
	if c.index >= c.arr.size {
		panic(&IndexError{Index: c.index, Size: c.arr.size})
	}

	v := c.cur[c.off]
	c.lastSeg, c.lastOff = c.seg, c.off
	c.index++
	if c.off++; c.off == len(c.cur) {
		c.seg++
		c.off = 0
		c.cur = nil
		if c.seg < len(c.arr.segments) {
			c.cur = c.arr.segments[c.seg]
		}
	}
	return v
}

// Previous moves back by one and returns the element at the new position.
// It panics with an *IndexError when HasPrevious is false.
func (c *Cursor[T]) Previous() T {
	if c.index <= 0 {
		panic(&IndexError{Index: c.index - 1, Size: c.arr.size})
	}

	c.index--
	if c.off == 0 {
		c.seg--
		c.cur = c.arr.segments[c.seg]
		c.off = len(c.cur)
	}
	c.off--
	c.lastSeg, c.lastOff = c.seg, c.off
	return c.cur[c.off]
}

// Set replaces the element returned by the most recent Next or Previous.
// It fails with ErrNoCurrentElement if neither has been called since the
// cursor was created or repositioned.
func (c *Cursor[T]) Set(v T) error {
	if c.lastSeg < 0 {
		return ErrNoCurrentElement
	}
	c.arr.segments[c.lastSeg][c.lastOff] = v
	return nil
}

// Seek repositions the cursor before the element at index, with the same
// bounds as Array.Cursor. It clears the element Set would write.
func (c *Cursor[T]) Seek(index int64) error {
	if index < 0 || index > c.arr.size {
		return &IndexError{Index: index, Size: c.arr.size}
	}
	c.moveTo(index)
	return nil
}
