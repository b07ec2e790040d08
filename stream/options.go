package stream

import (
	"context"
	"time"

	"github.com/hupe1980/bigarray"
	"github.com/hupe1980/bigarray/internal/fs"
	"github.com/hupe1980/bigarray/resource"
)

// Option configures a transfer.
type Option func(*config)

type config struct {
	controller  *resource.Controller
	logger      *bigarray.Logger
	metrics     bigarray.MetricsCollector
	compression Compression
	arrayOpts   []bigarray.Option
	fs          fs.FileSystem
}

func applyOptions(opts []Option) config {
	cfg := config{
		logger:      bigarray.NoopLogger(),
		metrics:     bigarray.NoopMetricsCollector{},
		compression: CompressionNone,
		fs:          fs.Default,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithResourceController rate limits the transfer with the controller's IO budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(c *config) {
		c.controller = rc
	}
}

// WithLogger logs completed and failed transfers.
func WithLogger(logger *bigarray.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = bigarray.NoopLogger()
		}
		c.logger = logger
	}
}

// WithMetricsCollector reports transfers to mc.
func WithMetricsCollector(mc bigarray.MetricsCollector) Option {
	return func(c *config) {
		if mc == nil {
			mc = bigarray.NoopMetricsCollector{}
		}
		c.metrics = mc
	}
}

// WithCompression selects the frame codec used by Encode. Decode reads the
// codec from the stream header and ignores this option.
func WithCompression(c Compression) Option {
	return func(cfg *config) {
		cfg.compression = c
	}
}

// WithArrayOptions configures arrays allocated by Decode and LoadFile.
func WithArrayOptions(opts ...bigarray.Option) Option {
	return func(c *config) {
		c.arrayOpts = append(c.arrayOpts, opts...)
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(c *config) {
		c.fs = fsys
	}
}

func (c *config) finish(ctx context.Context, direction string, bytes int64, start time.Time, err error) {
	c.logger.LogTransfer(ctx, direction, bytes, err)
	c.metrics.RecordTransfer(direction, bytes, time.Since(start), err)
}
