package bigarray

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// bigEndian is the byte order of the running platform.
var bigEndian = binary.NativeEndian.Uint16([]byte{0, 1}) == 1

// subwordShift returns the bit position, inside the aligned 32-bit word that
// encloses addr, of a width-byte value stored at addr.
func subwordShift(addr, width uintptr, bigEndian bool) uint {
	if bigEndian {
		return uint(4-width-addr&3) * 8
	}
	return uint(addr&3) * 8
}

// subword locates a 1- or 2-byte value inside its enclosing aligned word.
type subword struct {
	word  *uint32
	shift uint
	mask  uint32
}

func newSubword(p unsafe.Pointer, width uintptr) subword {
	addr := uintptr(p)
	return subword{
		word:  (*uint32)(unsafe.Add(p, -int(addr&3))),
		shift: subwordShift(addr, width, bigEndian),
		mask:  uint32(1)<<(width*8) - 1,
	}
}

func (s subword) load() uint64 {
	return uint64(atomic.LoadUint32(s.word) >> s.shift & s.mask)
}

// cas swaps the value from old to new. Concurrent writes to neighbouring
// bytes of the same word make the word CAS fail; those failures are retried
// as long as the target bits still hold old.
func (s subword) cas(old, new uint64) bool {
	o, n := uint32(old)&s.mask, uint32(new)&s.mask
	for {
		w := atomic.LoadUint32(s.word)
		if w>>s.shift&s.mask != o {
			return false
		}
		if atomic.CompareAndSwapUint32(s.word, w, w&^(s.mask<<s.shift)|n<<s.shift) {
			return true
		}
	}
}

func (s subword) swap(new uint64) uint64 {
	n := uint32(new) & s.mask
	for {
		w := atomic.LoadUint32(s.word)
		if atomic.CompareAndSwapUint32(s.word, w, w&^(s.mask<<s.shift)|n<<s.shift) {
			return uint64(w >> s.shift & s.mask)
		}
	}
}

// The word primitives below operate on the raw bit pattern of a width-byte
// element at p. p must be aligned to min(width, 4), and to 8 for 64-bit
// values on 32-bit platforms.

func loadBits(p unsafe.Pointer, width uintptr) uint64 {
	switch width {
	case 8:
		return atomic.LoadUint64((*uint64)(p))
	case 4:
		return uint64(atomic.LoadUint32((*uint32)(p)))
	default:
		return newSubword(p, width).load()
	}
}

func storeBits(p unsafe.Pointer, width uintptr, v uint64) {
	switch width {
	case 8:
		atomic.StoreUint64((*uint64)(p), v)
	case 4:
		atomic.StoreUint32((*uint32)(p), uint32(v))
	default:
		newSubword(p, width).swap(v)
	}
}

func swapBits(p unsafe.Pointer, width uintptr, v uint64) uint64 {
	switch width {
	case 8:
		return atomic.SwapUint64((*uint64)(p), v)
	case 4:
		return uint64(atomic.SwapUint32((*uint32)(p), uint32(v)))
	default:
		return newSubword(p, width).swap(v)
	}
}

func casBits(p unsafe.Pointer, width uintptr, old, new uint64) bool {
	switch width {
	case 8:
		return atomic.CompareAndSwapUint64((*uint64)(p), old, new)
	case 4:
		return atomic.CompareAndSwapUint32((*uint32)(p), uint32(old), uint32(new))
	default:
		return newSubword(p, width).cas(old, new)
	}
}

// toBits returns the bit pattern of v, zero-extended to 64 bits.
func toBits[T any](v T) uint64 {
	p := unsafe.Pointer(&v)
	switch unsafe.Sizeof(v) {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(*(*uint32)(p))
	default:
		return *(*uint64)(p)
	}
}

// fromBits is the inverse of toBits.
func fromBits[T any](b uint64) T {
	var v T
	p := unsafe.Pointer(&v)
	switch unsafe.Sizeof(v) {
	case 1:
		*(*uint8)(p) = uint8(b)
	case 2:
		*(*uint16)(p) = uint16(b)
	case 4:
		*(*uint32)(p) = uint32(b)
	default:
		*(*uint64)(p) = b
	}
	return v
}
