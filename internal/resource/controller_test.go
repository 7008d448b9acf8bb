package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	n, err := c.AcquireMemory(t.Context(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)

	_, err = c.AcquireMemory(t.Context(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Would exceed the limit.
	_, ok := c.TryAcquireMemory(20)
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	_, ok = c.TryAcquireMemory(20)
	assert.True(t, ok)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_OversizedRequestIsClamped(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	n, err := c.AcquireMemory(t.Context(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	_, ok := c.TryAcquireMemory(1)
	assert.False(t, ok)

	c.ReleaseMemory(n)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	n, err := c.AcquireMemory(t.Context(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)
	assert.Equal(t, int64(0), c.MemoryLimit())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.MaxWorkers())

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.False(t, c.TryAcquireWorker())

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller

	n, err := c.AcquireMemory(t.Context(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
	c.ReleaseMemory(10)
	assert.NoError(t, c.AcquireWorker(t.Context()))
	c.ReleaseWorker()
	assert.NoError(t, c.AcquireIO(t.Context(), 1<<20))
	assert.Equal(t, 1, c.MaxWorkers())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	data := bytes.Repeat([]byte("x"), 3<<20)

	// A read larger than the burst must not fail.
	buf := make([]byte, 2<<20)
	r := NewRateLimitedReader(t.Context(), bytes.NewReader(data), c)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, n)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	r = NewRateLimitedReader(ctx, bytes.NewReader(data), c)
	_, err = io.ReadAll(r)
	assert.Error(t, err)
}
