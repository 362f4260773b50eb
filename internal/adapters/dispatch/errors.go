package dispatch

import "errors"

var (
	// ErrClosed is returned when triggering a dispatcher that has been
	// shut down.
	ErrClosed = errors.New("dispatch: dispatcher closed")
	// ErrQueueFull is returned when the refresh queue cannot accept
	// another request.
	ErrQueueFull = errors.New("dispatch: refresh queue full")
)
