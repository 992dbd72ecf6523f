package qte

import (
	"github.com/okian/qte/pkg/logger"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInputMapper sets the collaborator resolving actions to keys.
func WithInputMapper(m InputMapper) Option {
	return func(d *Dispatcher) {
		d.mapper = m
	}
}

// WithLogger overrides the dispatcher logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithHooks registers lifecycle extensions in order.
func WithHooks(hooks ...Hook) Option {
	return func(d *Dispatcher) {
		for _, h := range hooks {
			d.hooks.Register(h)
		}
	}
}
