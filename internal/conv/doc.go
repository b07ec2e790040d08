// Package conv provides checked integer conversions.
//
// The public API speaks int64 (logical indices and byte counts) while the
// runtime and syscalls speak int, uint32 and uintptr. Conversions at those
// boundaries go through this package so that oversized values fail loudly
// instead of wrapping.
//
// Conversions that are safe by construction (segment offsets, loop indices)
// use direct casts.
package conv
