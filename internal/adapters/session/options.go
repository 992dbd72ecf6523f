package session

import (
	"time"

	"github.com/okian/qte/pkg/logger"
)

const (
	defaultTickInterval  = 16 * time.Millisecond
	defaultQueueCapacity = 1024
	defaultStreamBuffer  = 64
	defaultHistory       = 256
)

// Option configures a Host.
type Option func(*Host)

// WithLogger overrides the host logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithTickInterval sets the frame length used to advance timers.
func WithTickInterval(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.tick = d
		}
	}
}

// WithManualTime disables the frame ticker. Time only moves through Step.
func WithManualTime() Option {
	return func(h *Host) {
		h.manual = true
	}
}

// WithQueueCapacity bounds the command queue.
func WithQueueCapacity(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.queueCapacity = n
		}
	}
}

// WithStreamBuffer sets the per-subscriber buffer.
func WithStreamBuffer(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.streamBuffer = n
		}
	}
}

// WithHistory sets how many finished instances Get can still return.
func WithHistory(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.historySize = n
		}
	}
}
