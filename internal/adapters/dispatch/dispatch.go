// Package dispatch serializes refresh runs through a bounded request
// queue. Only one run executes at a time; requests arriving while the
// queue is full are rejected rather than piled up.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pumptrack/pumptrack/pkg/logger"
	"github.com/pumptrack/pumptrack/pkg/metrics"
)

// defaultCapacity bounds the refresh request queue.
const defaultCapacity = 16

// Request identifies one queued refresh run.
type Request struct {
	ID          string
	RequestedAt time.Time
}

// RunFunc executes one refresh run.
type RunFunc func(ctx context.Context, req Request) error

// Dispatcher owns the request queue and the single runner goroutine.
// In inline mode runs execute synchronously on the caller and the queue
// is bypassed entirely.
type Dispatcher struct {
	run      RunFunc
	capacity int
	inline   bool
	requests chan Request
	logger   logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New constructs a Dispatcher around the given run function.
func New(run RunFunc, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		run:      run,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.requests = make(chan Request, d.capacity)

	metrics.UpdateQueueCapacity(d.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return d
}

// Start launches the runner goroutine. It exits when the context is
// cancelled or the dispatcher is closed.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-d.requests:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				d.updateGauges()
				_ = d.execute(ctx, req)
			}
		}
	}()
}

func (d *Dispatcher) execute(ctx context.Context, req Request) error {
	start := time.Now()
	err := d.run(ctx, req)
	if d.logger == nil {
		return err
	}
	if err != nil {
		d.logger.Error(ctx, "refresh run failed",
			logger.String("run_id", req.ID),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return err
	}
	d.logger.Info(ctx, "refresh run finished",
		logger.String("run_id", req.ID),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Trigger enqueues a refresh request and returns its run id. The
// enqueue never blocks; a full queue returns ErrQueueFull. In inline
// mode the run executes before Trigger returns and its error is
// reported directly.
func (d *Dispatcher) Trigger(ctx context.Context) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return "", ErrClosed
	}

	req := Request{
		ID:          uuid.NewString(),
		RequestedAt: time.Now(),
	}
	if d.inline {
		return req.ID, d.execute(ctx, req)
	}
	select {
	case d.requests <- req:
		metrics.RecordQueueEnqueue()
		d.updateGauges()
		return req.ID, nil
	case <-ctx.Done():
		metrics.RecordQueueRejection()
		return "", ctx.Err()
	default:
		metrics.RecordQueueRejection()
		return "", ErrQueueFull
	}
}

// Len returns the current number of queued requests.
func (d *Dispatcher) Len() int {
	return len(d.requests)
}

// Close stops accepting requests and waits for the runner to drain.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.requests)
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

func (d *Dispatcher) updateGauges() {
	size := len(d.requests)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(d.capacity))
}
