package bigarray_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/bigarray"
)

// Example demonstrates creating an array and reading it back.
func Example() {
	arr, err := bigarray.New(10, func(i int64) int64 { return i * i }, bigarray.WithSegmentBits(2))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(arr.Size(), arr.SegmentCount(), arr.Get(9))
	// Output: 10 3 81
}

// ExampleArray_ForEachInRange visits an inclusive range spanning segments.
func ExampleArray_ForEachInRange() {
	arr, err := bigarray.New(10, func(i int64) string { return fmt.Sprint("v", i) }, bigarray.WithSegmentBits(2))
	if err != nil {
		log.Fatal(err)
	}

	_ = arr.ForEachInRange(3, 5, func(i int64, v string) {
		fmt.Println(i, v)
	})
	// Output:
	// 3 v3
	// 4 v4
	// 5 v5
}

// ExampleCursor walks forward and back.
func ExampleCursor() {
	arr, err := bigarray.Wrap([]rune("segmented"), true, bigarray.WithSegmentBits(2))
	if err != nil {
		log.Fatal(err)
	}

	c, _ := arr.Cursor(0)
	for c.HasNext() {
		fmt.Print(string(c.Next()))
	}
	fmt.Println()
	for c.HasPrevious() {
		fmt.Print(string(c.Previous()))
	}
	fmt.Println()
	// Output:
	// segmented
	// detnemges
}

// ExampleAtomic updates packed bytes without locks.
func ExampleAtomic() {
	arr, err := bigarray.New[uint8](8, nil)
	if err != nil {
		log.Fatal(err)
	}
	view, err := bigarray.NewAtomic(arr)
	if err != nil {
		log.Fatal(err)
	}

	view.Set(1, 10)
	fmt.Println(view.CompareAndSet(1, 10, 11))
	fmt.Println(view.CompareAndSet(1, 10, 12))
	fmt.Println(view.GetAndUpdate(1, func(x uint8) uint8 { return x * 2 }), view.Get(1))
	// Output:
	// true
	// false
	// 11 22
}

// ExampleNewOffHeapBytes allocates bytes outside the Go heap.
func ExampleNewOffHeapBytes() {
	b, err := bigarray.NewOffHeapBytes(context.Background(), 1<<20)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	b.Set(1<<20-1, 0xff)
	fmt.Println(b.Size(), b.Get(1<<20-1))
	// Output: 1048576 255
}
