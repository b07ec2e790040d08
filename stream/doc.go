// Package stream moves byte arrays between a bigarray.Array[byte] and external
// sources and sinks, one segment at a time.
//
// Three flavours are provided:
//
//   - [ReadFull] and [WriteAll] fill or drain an array from a plain
//     io.Reader or io.Writer. The stream is chunked into segment-sized reads
//     and writes; no record format is assumed.
//   - [Encode] and [Decode] use a framed format with one optionally
//     compressed frame per segment (LZ4 or ZSTD).
//   - [LoadFile] and [SaveFile] copy raw file contents. Loading maps the file
//     read-only; saving writes a temporary file and renames it into place.
//
// All transfers honour context cancellation between segments and can be rate
// limited with a resource.Controller.
//
// # Frame format
//
//	header: "BGAF" | version u8 | compression u8 | segment bits u8 | 0 u8 | size u64
//	frame:  uncompressed u32 | compressed u32 (0 = stored raw) | crc32c u32 | payload
//
// The checksum covers the uncompressed bytes. All integers are little endian.
package stream
