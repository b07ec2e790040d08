package bigarray

import (
	"math"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAtomic[T any](t *testing.T, size int64, bits uint8) (*Array[T], *Atomic[T]) {
	t.Helper()
	a, err := New[T](size, nil, WithSegmentBits(bits))
	require.NoError(t, err)
	v, err := NewAtomic(a)
	require.NoError(t, err)
	return a, v
}

func TestAtomic_Widths(t *testing.T) {
	t.Run("int8", func(t *testing.T) { testAtomicBasics[int8](t, -5, 7) })
	t.Run("uint8", func(t *testing.T) { testAtomicBasics[uint8](t, 250, 3) })
	t.Run("int16", func(t *testing.T) { testAtomicBasics[int16](t, -300, 1234) })
	t.Run("uint16", func(t *testing.T) { testAtomicBasics[uint16](t, 65535, 2) })
	t.Run("int32", func(t *testing.T) { testAtomicBasics[int32](t, math.MinInt32, 99) })
	t.Run("float32", func(t *testing.T) { testAtomicBasics[float32](t, 1.5, -2.25) })
	t.Run("int64", func(t *testing.T) { testAtomicBasics[int64](t, math.MaxInt64, -1) })
	t.Run("float64", func(t *testing.T) { testAtomicBasics[float64](t, math.Pi, math.Inf(-1)) })
	t.Run("bool", func(t *testing.T) { testAtomicBasics[bool](t, true, false) })
}

func testAtomicBasics[T comparable](t *testing.T, x, y T) {
	a, v := newAtomic[T](t, 11, 2)
	var zero T
	assert.Equal(t, int64(11), v.Len())

	for i := range a.Size() {
		v.Set(i, x)
		assert.Equal(t, x, v.Get(i))
		assert.Equal(t, x, a.Get(i))

		// Neighbours sharing a word stay untouched.
		if i+1 < a.Size() {
			assert.Equal(t, zero, v.Get(i+1))
		}

		assert.Equal(t, x, v.GetAndSet(i, y))
		assert.Equal(t, y, v.Get(i))

		assert.False(t, v.CompareAndSet(i, x, zero))
		assert.True(t, v.CompareAndSet(i, y, x))
		assert.Equal(t, x, v.Get(i))

		v.LazySet(i, zero)
		assert.Equal(t, zero, a.Get(i))
	}
}

func TestAtomic_CheckedAccess(t *testing.T) {
	_, v := newAtomic[int32](t, 5, 1)

	require.NoError(t, v.TrySet(4, 9))
	got, err := v.TryGet(4)
	require.NoError(t, err)
	assert.Equal(t, int32(9), got)

	_, err = v.TryGet(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, v.TrySet(-1, 0), ErrIndexOutOfRange)

	assertIndexPanic(t, func() { v.Get(5) })
	assertIndexPanic(t, func() { v.CompareAndSet(-1, 0, 1) })
}

func TestAtomic_Update(t *testing.T) {
	_, v := newAtomic[uint16](t, 4, 2)

	v.Set(1, 10)
	assert.Equal(t, uint16(10), v.GetAndUpdate(1, func(x uint16) uint16 { return x * 2 }))
	assert.Equal(t, uint16(21), v.UpdateAndGet(1, func(x uint16) uint16 { return x + 1 }))
	assert.Equal(t, uint16(21), v.Get(1))
	assert.Zero(t, v.Get(0))
	assert.Zero(t, v.Get(2))
}

func TestAtomic_ConditionalUpdates(t *testing.T) {
	_, v := newAtomic[int64](t, 2, 1)
	greater := func(old, val int64) bool { return val > old }

	v.Set(0, 5)
	assert.False(t, v.CompareAndSetFunc(0, 3, greater))
	assert.True(t, v.CompareAndSetFunc(0, 8, greater))
	assert.Equal(t, int64(8), v.Get(0))

	assert.False(t, v.UpdateIf(0, 7, greater))
	assert.True(t, v.UpdateIf(0, 9, greater))
	assert.Equal(t, int64(9), v.Get(0))
}

func TestAtomic_BitPatternEquality(t *testing.T) {
	_, v := newAtomic[float64](t, 1, 1)

	nan := math.NaN()
	v.Set(0, nan)
	assert.True(t, v.CompareAndSet(0, nan, 1))

	v.Set(0, math.Copysign(0, -1))
	assert.False(t, v.CompareAndSet(0, 0, 1), "-0 and +0 differ")
}

func TestAtomic_ConcurrentIncrement(t *testing.T) {
	goroutines, perGoroutine := 100, 10_000
	if testing.Short() {
		goroutines, perGoroutine = 8, 1_000
	}

	t.Run("int64", func(t *testing.T) {
		_, v := newAtomic[int64](t, 3, 1)
		incrementConcurrently(v, 2, goroutines, perGoroutine)
		assert.Equal(t, int64(goroutines*perGoroutine), v.Get(2))
	})

	t.Run("uint32", func(t *testing.T) {
		_, v := newAtomic[uint32](t, 3, 1)
		incrementConcurrently(v, 1, goroutines, perGoroutine)
		assert.Equal(t, uint32(goroutines*perGoroutine), v.Get(1))
	})

	t.Run("uint16 wraps", func(t *testing.T) {
		_, v := newAtomic[uint16](t, 3, 1)
		incrementConcurrently(v, 0, goroutines, perGoroutine)
		assert.Equal(t, uint16(goroutines*perGoroutine), v.Get(0))
	})
}

type integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

func incrementConcurrently[T integer](v *Atomic[T], index int64, goroutines, perGoroutine int) {
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				v.GetAndUpdate(index, func(x T) T { return x + 1 })
			}
		}()
	}
	wg.Wait()
}

func TestAtomic_SubwordNeighbours(t *testing.T) {
	// Four bytes of one aligned word, each owned by its own goroutines.
	const perGoroutine = 2_000
	a, v := newAtomic[uint8](t, 8, 3)

	var wg sync.WaitGroup
	for idx := range int64(4) {
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perGoroutine {
					for {
						old := v.Get(idx)
						if v.CompareAndSet(idx, old, old+1) {
							break
						}
						runtime.Gosched()
					}
				}
			}()
		}
	}
	wg.Wait()

	for idx := range int64(4) {
		// 8000 increments of a byte wrap to 64.
		assert.Equal(t, uint8(4*perGoroutine%256), a.Get(idx), "byte %d", idx)
	}
	for idx := int64(4); idx < 8; idx++ {
		assert.Zero(t, a.Get(idx))
	}
}

func TestAtomic_SubwordGetAndSet(t *testing.T) {
	_, v := newAtomic[int8](t, 4, 2)

	var wg sync.WaitGroup
	for idx := range int64(4) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range 1000 {
				v.GetAndSet(idx, int8(idx)*10+int8(n%2))
			}
		}()
	}
	wg.Wait()

	for idx := range int64(4) {
		assert.Equal(t, int8(idx)*10+1, v.Get(idx))
	}
}

func TestSubwordShift(t *testing.T) {
	tests := []struct {
		addr, width uintptr
		little, big uint
	}{
		{0x1000, 1, 0, 24},
		{0x1001, 1, 8, 16},
		{0x1002, 1, 16, 8},
		{0x1003, 1, 24, 0},
		{0x1000, 2, 0, 16},
		{0x1002, 2, 16, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.little, subwordShift(tt.addr, tt.width, false), "LE %#x/%d", tt.addr, tt.width)
		assert.Equal(t, tt.big, subwordShift(tt.addr, tt.width, true), "BE %#x/%d", tt.addr, tt.width)
	}
}

func TestNewAtomic_UnsupportedStride(t *testing.T) {
	type rgb struct{ R, G, B uint8 }
	type pair struct{ A, B uint16 }
	type ptr struct{ P *int32 }

	t.Run("ThreeBytes", func(t *testing.T) {
		a, err := New[rgb](4, nil)
		require.NoError(t, err)
		_, err = NewAtomic(a)
		require.ErrorIs(t, err, ErrUnsupportedElementStride)

		var se *StrideError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, uintptr(3), se.Stride)
	})

	t.Run("UnderAligned", func(t *testing.T) {
		a, err := New[pair](4, nil)
		require.NoError(t, err)
		_, err = NewAtomic(a)
		assert.ErrorIs(t, err, ErrUnsupportedElementStride)
	})

	t.Run("Pointer", func(t *testing.T) {
		a, err := New[ptr](4, nil)
		require.NoError(t, err)
		_, err = NewAtomic(a)
		assert.ErrorIs(t, err, ErrUnsupportedElementStride)
	})

	t.Run("SixteenBytes", func(t *testing.T) {
		a, err := New[complex128](4, nil)
		require.NoError(t, err)
		_, err = NewAtomic(a)
		assert.ErrorIs(t, err, ErrUnsupportedElementStride)
	})

	t.Run("OddByteOffset", func(t *testing.T) {
		raw := make([]byte, 9)
		a, err := Wrap(raw[1:], false)
		require.NoError(t, err)
		v, err := NewAtomic(a)
		require.NoError(t, err, "bytes need no alignment")

		assert.True(t, v.CompareAndSet(2, 0, 0xab))
		assert.Equal(t, []byte{0, 0, 0, 0xab, 0, 0, 0, 0, 0}, raw)
	})
}

func BenchmarkAtomic(b *testing.B) {
	a, err := New[uint8](1<<16, nil)
	require.NoError(b, err)
	v, err := NewAtomic(a)
	require.NoError(b, err)

	b.Run("Uint8CompareAndSet", func(b *testing.B) {
		b.ReportAllocs()
		i := int64(0)
		for b.Loop() {
			old := v.Get(i)
			v.CompareAndSet(i, old, old+1)
			i = (i + 1) & (1<<16 - 1)
		}
	})
}
