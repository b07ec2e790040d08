package stream

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hupe1980/bigarray"
	"github.com/hupe1980/bigarray/internal/mmap"
)

// LoadFile reads the raw contents of the file at path into a new byte array.
// The file is memory-mapped read-only and copied one segment at a time. An
// empty file fails with bigarray.ErrInvalidSize.
func LoadFile(ctx context.Context, path string, opts ...Option) (*bigarray.Array[byte], error) {
	cfg := applyOptions(opts)
	start := time.Now()

	arr, n, err := loadFile(ctx, path, &cfg)
	cfg.finish(ctx, bigarray.DirectionRead, n, start, err)
	return arr, err
}

func loadFile(ctx context.Context, path string, cfg *config) (*bigarray.Array[byte], int64, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("stream: map %s: %w", path, err)
	}
	defer m.Close()

	if m.Size() == 0 {
		return nil, 0, fmt.Errorf("%w: %s is empty", bigarray.ErrInvalidSize, path)
	}

	arr, err := bigarray.New[byte](int64(m.Size()), nil, cfg.arrayOpts...)
	if err != nil {
		return nil, 0, err
	}

	// Advice is a hint; a failure leaves the mapping fully usable.
	_ = m.Advise(mmap.AccessSequential)

	var off int
	for _, seg := range arr.Segments() {
		if err := ctx.Err(); err != nil {
			return nil, int64(off), err
		}
		if err := cfg.controller.AcquireIO(ctx, len(seg)); err != nil {
			return nil, int64(off), err
		}
		region, err := m.Region(off, len(seg))
		if err != nil {
			return nil, int64(off), err
		}
		off += copy(seg, region.Bytes())
		_ = region.Advise(mmap.AccessDontNeed)
	}
	return arr, int64(off), nil
}

// SaveFile writes the raw contents of src to path. The data is written to a
// temporary file in the same directory, synced, and renamed over path, so a
// failed save leaves any previous file untouched.
func SaveFile(ctx context.Context, path string, src *bigarray.Array[byte], opts ...Option) error {
	cfg := applyOptions(opts)
	start := time.Now()

	n, err := saveFile(ctx, path, src, &cfg)
	cfg.finish(ctx, bigarray.DirectionWrite, n, start, err)
	return err
}

func saveFile(ctx context.Context, path string, src *bigarray.Array[byte], cfg *config) (n int64, err error) {
	f, err := cfg.fs.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = cfg.fs.Remove(f.Name())
		}
	}()

	if n, err = writeSegments(ctx, cfg.writer(ctx, f), src); err != nil {
		return n, err
	}
	if err = f.Sync(); err != nil {
		return n, err
	}
	if err = f.Close(); err != nil {
		return n, err
	}
	if err = cfg.fs.Rename(f.Name(), path); err != nil {
		return n, fmt.Errorf("stream: rename %s: %w", f.Name(), err)
	}
	return n, nil
}
