// Package qte implements quick time events: timed key prompts that resolve
// exactly once as a success, a wrong-input failure or a timeout.
//
// Everything in this package runs on one logical thread. The host loop that
// advances the World also delivers key presses, so no locks are taken.
package qte

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/timer"
	"github.com/okian/qte/pkg/logger"
)

// Scheduler runs one-shot callbacks.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, fn func()) timer.Handle
	Cancel(h timer.Handle) bool
}

// Clock reads monotonic session time.
type Clock interface {
	Now() time.Duration
}

// World is the execution context instances need to run.
type World interface {
	Scheduler
	Clock
}

// InputMapper resolves an action to the keys currently bound to it.
type InputMapper interface {
	ResolveActionToKeys(action model.Action) []model.Key
}

// Dispatcher keeps the running instances of one session ordered by priority
// and routes key presses to them.
type Dispatcher struct {
	policy Policy
	mapper InputMapper
	hooks  *Hooks
	log    logger.Logger
	active []*Instance
}

// NewDispatcher builds a dispatcher enforcing policy.
func NewDispatcher(policy Policy, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		policy: policy.clone(),
		hooks:  NewHooks(nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Named("qte")
	}
	d.hooks.log = d.log
	return d
}

// Policy returns the dispatcher policy. A nil dispatcher uses DefaultPolicy.
func (d *Dispatcher) Policy() Policy {
	if d == nil {
		return DefaultPolicy()
	}
	return d.policy
}

// Register adds i and re-sorts by priority. Nil and duplicate instances are ignored.
func (d *Dispatcher) Register(ctx context.Context, i *Instance) {
	if d == nil || i == nil {
		return
	}
	if d.indexOf(i) >= 0 {
		d.log.Warn(ctx, "qte already registered", logger.String("qte", i.DisplayID()))
		return
	}
	d.active = append(d.active, i)
	d.rebuildSorted()
	if d.policy.DebugLogging {
		d.log.Debug(ctx, "qte registered",
			logger.String("qte", i.DisplayID()),
			logger.Int("priority", i.priority),
			logger.Int("active", len(d.active)),
		)
	}
	d.hooks.emitRegistered(ctx, i)
}

// Unregister removes i. Absent instances are ignored.
func (d *Dispatcher) Unregister(ctx context.Context, i *Instance) {
	if d == nil || i == nil {
		return
	}
	idx := d.indexOf(i)
	if idx < 0 {
		return
	}
	d.active = append(d.active[:idx], d.active[idx+1:]...)
	if d.policy.DebugLogging {
		d.log.Debug(ctx, "qte unregistered",
			logger.String("qte", i.DisplayID()),
			logger.Int("active", len(d.active)),
		)
	}
}

// TryConsumeInput offers key to the running instances from highest priority
// down. It reports whether one of them consumed it.
func (d *Dispatcher) TryConsumeInput(ctx context.Context, key model.Key) bool {
	if d == nil || !key.Valid() || len(d.active) == 0 {
		return false
	}
	for _, i := range d.Active() {
		if i.TryResolveWithInput(ctx, key) {
			d.Unregister(ctx, i)
			return true
		}
	}
	return false
}

// IsGloballyIgnored reports whether key is ignored by policy.
func (d *Dispatcher) IsGloballyIgnored(key model.Key) bool {
	return d.Policy().IsGloballyIgnored(key)
}

// IsKeyIgnored reports whether key is ignored for i, globally or by its own list.
func (d *Dispatcher) IsKeyIgnored(i *Instance, key model.Key) bool {
	if d.IsGloballyIgnored(key) {
		return true
	}
	return i != nil && i.def.Input.Ignores(key)
}

// IsCorrectKey reports whether key is i's target. Action targets go through
// the input mapper only.
func (d *Dispatcher) IsCorrectKey(i *Instance, key model.Key) bool {
	if i == nil || !key.Valid() {
		return false
	}
	in := i.def.Input
	if in.UsesAction() {
		if d == nil || d.mapper == nil {
			return false
		}
		return model.ContainsKey(d.mapper.ResolveActionToKeys(in.TargetAction), key)
	}
	return key == in.TargetKey
}

// CancelAll cancels every running instance without notifying subscribers.
// Instances registered by hooks while it runs stay registered.
func (d *Dispatcher) CancelAll(ctx context.Context) {
	if d == nil {
		return
	}
	cancelled := d.Active()
	for _, i := range cancelled {
		i.Cancel(ctx)
	}
	for _, i := range cancelled {
		d.Unregister(ctx, i)
	}
}

// Deinitialize tears the dispatcher down at session end.
func (d *Dispatcher) Deinitialize(ctx context.Context) {
	if d == nil {
		return
	}
	n := len(d.active)
	d.CancelAll(ctx)
	d.log.Info(ctx, "qte dispatcher deinitialized", logger.Int("cancelled", n))
}

// Active returns a snapshot of the running instances in priority order.
func (d *Dispatcher) Active() []*Instance {
	if d == nil {
		return nil
	}
	return append([]*Instance(nil), d.active...)
}

// Len returns the number of running instances.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.active)
}

func (d *Dispatcher) indexOf(i *Instance) int {
	for idx, a := range d.active {
		if a == i {
			return idx
		}
	}
	return -1
}

func (d *Dispatcher) rebuildSorted() {
	sort.SliceStable(d.active, func(a, b int) bool {
		return priorityOf(d.active[a]) > priorityOf(d.active[b])
	})
}

func priorityOf(i *Instance) int {
	if i == nil {
		return math.MinInt
	}
	return i.priority
}

func (d *Dispatcher) hooksOrNil() *Hooks {
	if d == nil {
		return nil
	}
	return d.hooks
}
