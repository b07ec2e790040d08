// Package hash provides the CRC32-Castagnoli checksum that protects stream
// frames. The standard library uses SSE4.2 or the ARM CRC extension when the
// CPU provides them.
package hash
