package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("command queue full")
	ErrClosed = errors.New("command queue closed")
)
