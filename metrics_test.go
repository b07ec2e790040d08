package bigarray

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}

	a, err := New[int32](100, nil, WithMetricsCollector(mc))
	require.NoError(t, err)
	_ = a.Copy()

	_, err = New[int32](0, nil, WithMetricsCollector(mc))
	require.Error(t, err)

	mc.RecordTransfer(DirectionRead, 10, time.Millisecond, nil)
	mc.RecordTransfer(DirectionWrite, 20, time.Millisecond, errors.New("boom"))

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.HeapAllocations)
	assert.Equal(t, int64(1), stats.AllocationErrors)
	assert.Equal(t, int64(400), stats.BytesAllocated)
	assert.Equal(t, int64(1), stats.CopyCount)
	assert.Equal(t, int64(400), stats.BytesCopied)
	assert.Equal(t, int64(10), stats.BytesRead)
	assert.Equal(t, int64(20), stats.BytesWritten)
	assert.Equal(t, int64(1), stats.TransferErrors)
}

func TestNoopMetricsCollector(t *testing.T) {
	a, err := New[int32](10, nil, WithMetricsCollector(nil))
	require.NoError(t, err)
	assert.IsType(t, NoopMetricsCollector{}, a.opts.metricsCollector)
}
