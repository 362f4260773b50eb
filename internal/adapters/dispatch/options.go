package dispatch

import "github.com/pumptrack/pumptrack/pkg/logger"

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithCapacity sets the maximum number of queued refresh requests.
func WithCapacity(capacity int) Option {
	return func(d *Dispatcher) {
		if capacity > 0 {
			d.capacity = capacity
		}
	}
}

// WithInline makes Trigger execute runs synchronously instead of
// queuing them.
func WithInline(inline bool) Option {
	return func(d *Dispatcher) {
		d.inline = inline
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
