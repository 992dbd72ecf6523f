package qte

import (
	"context"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/pkg/logger"
)

// Hook is an extension observing instance lifecycle across a dispatcher.
// Implementations opt in to events by also implementing one or more of
// RegisteredHook, ResolvedHook and CancelledHook.
type Hook interface {
	Name() string
}

// RegisteredHook is called after an instance joins the dispatcher.
type RegisteredHook interface {
	OnRegistered(ctx context.Context, i *Instance) error
}

// ResolvedHook is called after an instance resolved and left the dispatcher.
type ResolvedHook interface {
	OnResolved(ctx context.Context, i *Instance, out model.Outcome) error
}

// CancelledHook is called after a running instance was cancelled.
type CancelledHook interface {
	OnCancelled(ctx context.Context, i *Instance) error
}

// Hooks fans lifecycle events out to extensions in registration order.
// Hook errors are logged and never reach the caller.
type Hooks struct {
	log        logger.Logger
	registered []namedHook[RegisteredHook]
	resolved   []namedHook[ResolvedHook]
	cancelled  []namedHook[CancelledHook]
}

type namedHook[T any] struct {
	name string
	hook T
}

// NewHooks returns an empty registry.
func NewHooks(log logger.Logger) *Hooks {
	return &Hooks{log: log}
}

// Register adds h for every event interface it implements.
func (h *Hooks) Register(hook Hook) {
	if hook == nil {
		return
	}
	name := hook.Name()
	if v, ok := hook.(RegisteredHook); ok {
		h.registered = append(h.registered, namedHook[RegisteredHook]{name, v})
	}
	if v, ok := hook.(ResolvedHook); ok {
		h.resolved = append(h.resolved, namedHook[ResolvedHook]{name, v})
	}
	if v, ok := hook.(CancelledHook); ok {
		h.cancelled = append(h.cancelled, namedHook[CancelledHook]{name, v})
	}
}

func (h *Hooks) emitRegistered(ctx context.Context, i *Instance) {
	if h == nil {
		return
	}
	for _, e := range h.registered {
		if err := e.hook.OnRegistered(ctx, i); err != nil {
			h.fail(ctx, e.name, "registered", err)
		}
	}
}

func (h *Hooks) emitResolved(ctx context.Context, i *Instance, out model.Outcome) {
	if h == nil {
		return
	}
	for _, e := range h.resolved {
		if err := e.hook.OnResolved(ctx, i, out); err != nil {
			h.fail(ctx, e.name, "resolved", err)
		}
	}
}

func (h *Hooks) emitCancelled(ctx context.Context, i *Instance) {
	if h == nil {
		return
	}
	for _, e := range h.cancelled {
		if err := e.hook.OnCancelled(ctx, i); err != nil {
			h.fail(ctx, e.name, "cancelled", err)
		}
	}
}

func (h *Hooks) fail(ctx context.Context, name, event string, err error) {
	if h.log == nil {
		return
	}
	h.log.Warn(ctx, "qte hook failed",
		logger.String("hook", name),
		logger.String("event", event),
		logger.Error(err),
	)
}
