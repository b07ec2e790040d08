package stream

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/hupe1980/bigarray"
	"github.com/hupe1980/bigarray/internal/conv"
	"github.com/hupe1980/bigarray/internal/hash"
	"github.com/hupe1980/bigarray/internal/layout"
)

const (
	headerSize      = 16
	frameHeaderSize = 12
	formatVersion   = 1
)

var magic = [4]byte{'B', 'G', 'A', 'F'}

// FrameWriter writes segment frames to an underlying writer.
type FrameWriter struct {
	w           io.Writer
	compression Compression
	header      [frameHeaderSize]byte
	written     int64
}

// NewFrameWriter creates a FrameWriter compressing frames with c.
func NewFrameWriter(w io.Writer, c Compression) *FrameWriter {
	return &FrameWriter{w: w, compression: c}
}

// WriteFrame writes p as one frame. Frames that do not compress well are
// stored raw.
func (fw *FrameWriter) WriteFrame(p []byte) error {
	raw, err := conv.IntToUint32(len(p))
	if err != nil {
		return fmt.Errorf("stream: frame too large: %w", err)
	}

	payload, err := compress(fw.compression, p)
	if err != nil {
		return err
	}
	stored := uint32(len(payload)) //nolint:gosec // smaller than len(p)
	if payload == nil {
		payload = p
	}

	binary.LittleEndian.PutUint32(fw.header[0:], raw)
	binary.LittleEndian.PutUint32(fw.header[4:], stored)
	binary.LittleEndian.PutUint32(fw.header[8:], hash.CRC32C(p))

	if err := fw.write(fw.header[:]); err != nil {
		return err
	}
	return fw.write(payload)
}

func (fw *FrameWriter) write(p []byte) error {
	n, err := fw.w.Write(p)
	fw.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// Written returns the number of bytes written so far, headers included.
func (fw *FrameWriter) Written() int64 {
	return fw.written
}

// FrameReader reads segment frames from an underlying reader.
type FrameReader struct {
	r           io.Reader
	compression Compression
	header      [frameHeaderSize]byte
	scratch     []byte
}

// NewFrameReader creates a FrameReader for frames compressed with c.
func NewFrameReader(r io.Reader, c Compression) *FrameReader {
	return &FrameReader{r: r, compression: c}
}

// ReadFrame reads the next frame into dst. The frame must decode to exactly
// len(dst) bytes and match its checksum.
func (fr *FrameReader) ReadFrame(dst []byte) error {
	stored, err := fr.readHeader(len(dst))
	if err != nil {
		return err
	}
	if stored == 0 {
		if _, err := io.ReadFull(fr.r, dst); err != nil {
			return unexpected(err)
		}
	} else {
		if err := fr.readPayload(stored); err != nil {
			return err
		}
		if err := decompress(fr.compression, fr.scratch, dst); err != nil {
			return err
		}
	}
	return fr.verify(dst)
}

// readSegment reads the next frame, which must decode to exactly n bytes,
// into a new slice. Memory is committed only as frame data arrives.
func (fr *FrameReader) readSegment(n int) ([]byte, error) {
	stored, err := fr.readHeader(n)
	if err != nil {
		return nil, err
	}

	var dst []byte
	if stored == 0 {
		if dst, err = readN(fr.r, nil, n); err != nil {
			return nil, err
		}
	} else {
		if err := fr.readPayload(stored); err != nil {
			return nil, err
		}
		dst = make([]byte, n)
		if err := decompress(fr.compression, fr.scratch, dst); err != nil {
			return nil, err
		}
	}
	return dst, fr.verify(dst)
}

// readHeader reads a frame header and returns the stored payload size, zero
// for a raw frame.
func (fr *FrameReader) readHeader(want int) (int, error) {
	if _, err := io.ReadFull(fr.r, fr.header[:]); err != nil {
		return 0, unexpected(err)
	}

	raw := binary.LittleEndian.Uint32(fr.header[0:])
	stored := binary.LittleEndian.Uint32(fr.header[4:])
	if uint64(raw) != uint64(want) { //nolint:gosec // want is a slice length
		return 0, fmt.Errorf("%w: frame holds %d bytes, want %d", ErrCorruptFrame, raw, want)
	}
	if stored != 0 && stored >= raw {
		return 0, fmt.Errorf("%w: compressed size %d not below %d", ErrCorruptFrame, stored, raw)
	}

	n, err := conv.Uint32ToInt(stored)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
	}
	return n, nil
}

func (fr *FrameReader) readPayload(n int) error {
	payload, err := readN(fr.r, fr.scratch, n)
	fr.scratch = payload
	return err
}

func (fr *FrameReader) verify(data []byte) error {
	if sum := binary.LittleEndian.Uint32(fr.header[8:]); hash.CRC32C(data) != sum {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptFrame)
	}
	return nil
}

// readChunk bounds how far a buffer grows ahead of the data actually read.
const readChunk = 1 << 20

// readN reads exactly n bytes, reusing buf's storage. The buffer grows by at
// most readChunk bytes beyond what has been read, so a length taken from
// untrusted input cannot force a large allocation up front.
func readN(r io.Reader, buf []byte, n int) ([]byte, error) {
	buf = buf[:0]
	for len(buf) < n {
		chunk := min(n-len(buf), readChunk)
		buf = slices.Grow(buf, chunk)
		m, err := io.ReadFull(r, buf[len(buf):len(buf)+chunk])
		buf = buf[:len(buf)+m]
		if err != nil {
			return buf, unexpected(err)
		}
	}
	return buf, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Encode writes src as a framed stream: a header followed by one frame per
// segment. It returns the number of bytes written.
func Encode(ctx context.Context, w io.Writer, src *bigarray.Array[byte], opts ...Option) (int64, error) {
	cfg := applyOptions(opts)
	start := time.Now()

	fw := NewFrameWriter(cfg.writer(ctx, w), cfg.compression)
	err := encode(ctx, fw, src, cfg.compression)
	cfg.finish(ctx, bigarray.DirectionWrite, fw.Written(), start, err)
	return fw.Written(), err
}

func encode(ctx context.Context, fw *FrameWriter, src *bigarray.Array[byte], c Compression) error {
	defer runtime.KeepAlive(src)

	if !c.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}

	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(c)
	hdr[6] = segmentBits(src.SegmentSize())
	binary.LittleEndian.PutUint64(hdr[8:], uint64(src.Size())) //nolint:gosec // sizes are positive
	if err := fw.write(hdr[:]); err != nil {
		return err
	}

	for s, seg := range src.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fw.WriteFrame(seg); err != nil {
			return fmt.Errorf("stream: write frame %d: %w", s, err)
		}
	}
	return nil
}

// Decode reads a framed stream written by Encode into a new array with the
// segment size recorded in the header.
func Decode(ctx context.Context, r io.Reader, opts ...Option) (*bigarray.Array[byte], error) {
	cfg := applyOptions(opts)
	start := time.Now()

	cr := &countingReader{r: cfg.reader(ctx, r)}
	arr, err := decode(ctx, cr, cfg.arrayOpts)
	cfg.finish(ctx, bigarray.DirectionRead, cr.n, start, err)
	return arr, err
}

func decode(ctx context.Context, r io.Reader, arrayOpts []bigarray.Option) (*bigarray.Array[byte], error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, unexpected(err))
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, hdr[:4])
	}
	if hdr[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidHeader, hdr[4])
	}
	c := Compression(hdr[5])
	if !c.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
	size := binary.LittleEndian.Uint64(hdr[8:])
	if size > math.MaxInt64 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidHeader, size)
	}

	l, err := layout.New(hdr[6])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if !l.Validate(int64(size)) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, &bigarray.SizeError{Size: int64(size), Max: l.MaxSize()})
	}

	// Segments are allocated frame by frame, so a header claiming more data
	// than the stream holds fails with io.ErrUnexpectedEOF at the first
	// missing frame.
	count := l.SegmentCount(int64(size))
	segs := make([][]byte, 0, min(count, 1024))
	fr := NewFrameReader(r, c)
	for s := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, err := fr.readSegment(l.SegmentLen(s, int64(size)))
		if err != nil {
			return nil, fmt.Errorf("stream: read frame %d: %w", s, err)
		}
		segs = append(segs, seg)
	}

	opts := append(append([]bigarray.Option(nil), arrayOpts...), bigarray.WithSegmentBits(hdr[6]))
	return bigarray.WrapSegments(segs, false, opts...)
}

func segmentBits(segmentSize int) byte {
	var bits byte
	for segmentSize > 1 {
		segmentSize >>= 1
		bits++
	}
	return bits
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
