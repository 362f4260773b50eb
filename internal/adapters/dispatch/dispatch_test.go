package dispatch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumptrack/pumptrack/internal/adapters/dispatch"
)

func TestTriggerExecutesRun(t *testing.T) {
	done := make(chan dispatch.Request, 1)
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error {
		done <- req
		return nil
	})
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	d.Start(ctx)

	id, err := d.Trigger(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	select {
	case req := <-done:
		assert.Equal(t, id, req.ID)
		assert.False(t, req.RequestedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("run was never executed")
	}
}

func TestTriggerQueueFull(t *testing.T) {
	block := make(chan struct{})
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error {
		<-block
		return nil
	}, dispatch.WithCapacity(1))
	t.Cleanup(func() {
		close(block)
		_ = d.Close()
	})

	ctx := context.Background()
	d.Start(ctx)

	// First request occupies the runner, second fills the queue.
	_, err := d.Trigger(ctx)
	require.NoError(t, err)

	var full bool
	for i := 0; i < 50; i++ {
		if _, err = d.Trigger(ctx); err != nil {
			full = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, full)
	assert.ErrorIs(t, err, dispatch.ErrQueueFull)
}

func TestCloseDrainsQueue(t *testing.T) {
	var runs atomic.Int32
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error {
		runs.Add(1)
		return nil
	}, dispatch.WithCapacity(4))

	ctx := context.Background()
	d.Start(ctx)

	for i := 0; i < 3; i++ {
		_, err := d.Trigger(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, d.Close())
	assert.Equal(t, int32(3), runs.Load())

	_, err := d.Trigger(ctx)
	assert.ErrorIs(t, err, dispatch.ErrClosed)
}

func TestInlineExecutesSynchronously(t *testing.T) {
	var runs atomic.Int32
	var failNext atomic.Bool
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error {
		runs.Add(1)
		if failNext.Load() {
			return errors.New("backend down")
		}
		return nil
	}, dispatch.WithInline(true))
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()

	// No Start needed: the run happens on the calling goroutine.
	id, err := d.Trigger(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, int32(1), runs.Load())

	failNext.Store(true)
	_, err = d.Trigger(ctx)
	assert.EqualError(t, err, "backend down")
}

func TestCloseIsIdempotent(t *testing.T) {
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error { return nil })
	d.Start(context.Background())

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}

func TestLenReportsQueuedRequests(t *testing.T) {
	block := make(chan struct{})
	d := dispatch.New(func(ctx context.Context, req dispatch.Request) error {
		<-block
		return nil
	}, dispatch.WithCapacity(4))
	t.Cleanup(func() {
		close(block)
		_ = d.Close()
	})

	ctx := context.Background()
	d.Start(ctx)

	_, err := d.Trigger(ctx)
	require.NoError(t, err)

	// Wait for the runner to pick the first request up.
	deadline := time.Now().Add(2 * time.Second)
	for d.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 0, d.Len())

	_, err = d.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}
