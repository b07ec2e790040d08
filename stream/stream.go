package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/hupe1980/bigarray"
	"github.com/hupe1980/bigarray/resource"
)

// ReadFull fills every segment of dst from r, in order, and returns the
// number of bytes read. A source shorter than dst fails with
// io.ErrUnexpectedEOF; bytes beyond dst.Size() are left unread.
func ReadFull(ctx context.Context, r io.Reader, dst *bigarray.Array[byte], opts ...Option) (int64, error) {
	cfg := applyOptions(opts)
	start := time.Now()

	n, err := readSegments(ctx, cfg.reader(ctx, r), dst)
	cfg.finish(ctx, bigarray.DirectionRead, n, start, err)
	return n, err
}

func readSegments(ctx context.Context, r io.Reader, dst *bigarray.Array[byte]) (int64, error) {
	defer runtime.KeepAlive(dst)

	var total int64
	for s, seg := range dst.Segments() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := io.ReadFull(r, seg)
		total += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return total, fmt.Errorf("stream: read segment %d: %w", s, err)
		}
	}
	return total, nil
}

// WriteAll drains every segment of src to w, in order, and returns the
// number of bytes written.
func WriteAll(ctx context.Context, w io.Writer, src *bigarray.Array[byte], opts ...Option) (int64, error) {
	cfg := applyOptions(opts)
	start := time.Now()

	n, err := writeSegments(ctx, cfg.writer(ctx, w), src)
	cfg.finish(ctx, bigarray.DirectionWrite, n, start, err)
	return n, err
}

func writeSegments(ctx context.Context, w io.Writer, src *bigarray.Array[byte]) (int64, error) {
	defer runtime.KeepAlive(src)

	var total int64
	for s, seg := range src.Segments() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := w.Write(seg)
		total += int64(n)
		if err == nil && n < len(seg) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return total, fmt.Errorf("stream: write segment %d: %w", s, err)
		}
	}
	return total, nil
}

func (c *config) reader(ctx context.Context, r io.Reader) io.Reader {
	if c.controller == nil {
		return r
	}
	return resource.NewRateLimitedReader(ctx, r, c.controller)
}

func (c *config) writer(ctx context.Context, w io.Writer) io.Writer {
	if c.controller == nil {
		return w
	}
	return resource.NewRateLimitedWriter(ctx, w, c.controller)
}
