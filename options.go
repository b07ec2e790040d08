package bigarray

import (
	"github.com/hupe1980/bigarray/offheap"
	"github.com/hupe1980/bigarray/resource"
)

// DefaultSegmentBits sets the default segment size to 1 Mi elements.
const DefaultSegmentBits = 20

type options struct {
	segmentBits      uint8
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	parallelism      int
	offheapOpts      []offheap.Option
}

func defaultOptions() options {
	return options{
		segmentBits:      DefaultSegmentBits,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		parallelism:      1,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures array construction.
//
// Derived arrays (Copy, Resize) inherit the options of their source.
type Option func(*options)

// WithSegmentBits sets the segment size to 1<<bits elements.
//
// Valid values are 1 through 30. Larger segments mean fewer boundary
// crossings during iteration; smaller segments reduce the over-allocation of
// the last segment and the cost of Resize. The maximum array size is
// (1<<bits) * math.MaxInt32.
func WithSegmentBits(bits uint8) Option {
	return func(o *options) {
		o.segmentBits = bits
	}
}

// WithLogger configures structured logging for allocations and transfers.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bigarray.NewJSONLogger(slog.LevelDebug)
//	arr, _ := bigarray.New[int64](1<<32, nil, bigarray.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController charges off-heap allocations against the
// controller's memory budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithParallelism bounds the number of goroutines used by Copy and
// ParallelFill. Values <= 1 keep all work on the calling goroutine.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallelism = n
	}
}

// WithOffHeapOptions forwards buffer options, such as access pattern hints,
// to the allocation behind NewOffHeapBytes. Heap arrays ignore them.
//
//	b, _ := bigarray.NewOffHeapBytes(ctx, 1<<30,
//	    bigarray.WithOffHeapOptions(offheap.WithSequentialAccess()))
func WithOffHeapOptions(opts ...offheap.Option) Option {
	return func(o *options) {
		o.offheapOpts = append(o.offheapOpts, opts...)
	}
}
