package api

import (
	"golang.org/x/time/rate"

	"github.com/okian/qte/internal/domain/dedupe"
)

const (
	defaultInputRate  = 50
	defaultInputBurst = 10
)

type serverConfig struct {
	deduper   dedupe.Deduper
	limiter   *rate.Limiter
	showDebug bool
}

// Option configures a Server.
type Option func(*serverConfig)

// WithDeduper sets the press id deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(c *serverConfig) {
		if d != nil {
			c.deduper = d
		}
	}
}

// WithInputRateLimit bounds key presses per second across all clients.
func WithInputRateLimit(perSecond float64, burst int) Option {
	return func(c *serverConfig) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithDebugInfo includes the debug overlay line in event responses.
func WithDebugInfo(show bool) Option {
	return func(c *serverConfig) {
		c.showDebug = show
	}
}
