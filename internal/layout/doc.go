// Package layout maps 64-bit logical indices onto a segmented array-of-arrays.
//
// # Addressing
//
// A Layout fixes a power-of-two segment size. A logical index splits into
//
//	segment = index >> bits
//	offset  = index & (size - 1)
//
// which is the shift/mask form of index / size and index % size.
//
// # Limits
//
// The number of segments is bounded by math.MaxInt32 so that segment indices
// stay in the 32-bit range on every platform. The largest representable array
// therefore holds Size() * math.MaxInt32 elements.
package layout
