package qte

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/timer"
	"github.com/okian/qte/pkg/logger"
)

// State is the lifecycle position of an instance.
type State int

// Instance states. Only Active accepts input or timeout.
const (
	StateIdle State = iota
	StateActive
	StateResolved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateResolved:
		return "resolved"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// OutcomeFunc receives the outcome of a resolved instance.
type OutcomeFunc func(model.Outcome)

type subscriber struct {
	id        uint64
	onSuccess OutcomeFunc
	onFailure OutcomeFunc
}

// Subscription detaches a subscriber.
type Subscription struct {
	i  *Instance
	id uint64
}

// Unsubscribe stops delivery to this subscriber.
func (s Subscription) Unsubscribe() {
	if s.i == nil {
		return
	}
	for idx, sub := range s.i.subs {
		if sub.id == s.id {
			s.i.subs = append(s.i.subs[:idx], s.i.subs[idx+1:]...)
			return
		}
	}
}

// Instance is one running quick time event.
type Instance struct {
	id         string
	def        model.Definition
	priority   int
	owner      *Owner
	world      World
	dispatcher *Dispatcher
	log        logger.Logger

	state     State
	startedAt time.Duration
	handle    timer.Handle
	outcome   model.Outcome
	baseCtx   context.Context

	subs    []subscriber
	nextSub uint64
}

// NewInstance creates an idle instance for owner. Entirely zero settings take
// the dispatcher's default settings.
func NewInstance(ctx context.Context, owner *Owner, def model.Definition, priority int) (*Instance, error) {
	if owner == nil {
		return nil, ErrNoOwner
	}
	var log logger.Logger
	if owner.dispatcher != nil {
		log = owner.dispatcher.log
	} else {
		log = logger.Named("qte")
	}
	if owner.destroyed {
		log.Warn(ctx, "qte owner destroyed", logger.String("owner", owner.name))
		return nil, fmt.Errorf("%w: %s", ErrOwnerDestroyed, owner.name)
	}
	def = def.Clone().WithDefaults(owner.dispatcher.Policy().DefaultSettings)
	if err := def.Validate(); err != nil {
		log.Error(ctx, "qte definition rejected",
			logger.String("qte", def.DisplayID()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	i := &Instance{
		id:         uuid.NewString(),
		def:        def,
		priority:   priority,
		owner:      owner,
		world:      owner.world,
		dispatcher: owner.dispatcher,
		log:        log,
	}
	owner.adopt(i)
	return i, nil
}

// ID returns the unique instance id.
func (i *Instance) ID() string { return i.id }

// DisplayID returns the definition identifier or "none".
func (i *Instance) DisplayID() string { return i.def.DisplayID() }

// Definition returns the definition the instance runs.
func (i *Instance) Definition() model.Definition { return i.def.Clone() }

// Owner returns the owner the instance was created for.
func (i *Instance) Owner() *Owner { return i.owner }

// Priority returns the routing priority; higher is asked first.
func (i *Instance) Priority() int { return i.priority }

// State returns the lifecycle state.
func (i *Instance) State() State { return i.state }

// IsActive reports whether the instance accepts input.
func (i *Instance) IsActive() bool { return i != nil && i.state == StateActive }

// HasResolved reports whether an outcome was produced.
func (i *Instance) HasResolved() bool { return i != nil && i.state == StateResolved }

// Outcome returns the outcome once resolved.
func (i *Instance) Outcome() (model.Outcome, bool) {
	return i.outcome, i.state == StateResolved
}

// Start schedules the timeout and registers with the dispatcher.
func (i *Instance) Start(ctx context.Context) error {
	if i.state != StateIdle {
		i.log.Warn(ctx, "qte start ignored",
			logger.String("qte", i.DisplayID()),
			logger.String("state", i.state.String()),
		)
		return ErrAlreadyStarted
	}
	if i.world == nil {
		i.log.Warn(ctx, "qte has no world", logger.String("qte", i.DisplayID()))
		return ErrNoWorld
	}
	i.baseCtx = context.WithoutCancel(ctx)
	i.startedAt = i.world.Now()
	i.state = StateActive
	i.handle = i.world.ScheduleOnce(i.def.Settings.Duration, i.onTimeout)
	i.dispatcher.Register(ctx, i)
	return nil
}

// Elapsed returns time since start, or zero when not active.
func (i *Instance) Elapsed() time.Duration {
	if i.state != StateActive || i.world == nil {
		return 0
	}
	e := i.world.Now() - i.startedAt
	if e < 0 {
		return 0
	}
	return e
}

// Remaining returns max(0, duration - elapsed).
func (i *Instance) Remaining() time.Duration {
	r := i.def.Settings.Duration - i.Elapsed()
	if r < 0 {
		return 0
	}
	return r
}

// IsTimingPerfect reports whether a correct press now would be perfect.
func (i *Instance) IsTimingPerfect() bool {
	return i.IsActive() && i.def.Settings.IsPerfect(i.Elapsed())
}

// DebugLine renders the overlay line for this instance.
func (i *Instance) DebugLine() string {
	perfect := "NO"
	if i.IsTimingPerfect() {
		perfect = "YES"
	}
	return fmt.Sprintf("QuickTimeEvent: %s | Time: %.2f/%.2f | Perfect: %s",
		i.DisplayID(), i.Elapsed().Seconds(), i.def.Settings.Duration.Seconds(), perfect)
}

// Subscribe registers callbacks for the outcome. Either may be nil.
// Subscribers run in subscription order.
func (i *Instance) Subscribe(onSuccess, onFailure OutcomeFunc) Subscription {
	i.nextSub++
	i.subs = append(i.subs, subscriber{id: i.nextSub, onSuccess: onSuccess, onFailure: onFailure})
	return Subscription{i: i, id: i.nextSub}
}

// TryResolveWithInput reports whether key was consumed. A consumed key
// resolves the instance as a success, or as a failure when it is wrong and
// WrongInputFails is set. Ignored keys are never consumed.
func (i *Instance) TryResolveWithInput(ctx context.Context, key model.Key) bool {
	if !i.IsActive() || !key.Valid() {
		return false
	}
	if i.dispatcher.IsKeyIgnored(i, key) {
		return false
	}
	if i.dispatcher.IsCorrectKey(i, key) {
		elapsed := i.Elapsed()
		i.resolve(ctx, model.Outcome{
			Success:        true,
			Perfect:        i.def.Settings.IsPerfect(elapsed),
			CompletionTime: elapsed,
		})
		return true
	}
	if i.def.Input.WrongInputFails {
		i.resolve(ctx, model.Outcome{CompletionTime: i.def.Settings.Duration})
		return true
	}
	return false
}

// Cancel stops the instance without an outcome.
func (i *Instance) Cancel(ctx context.Context) {
	switch i.state {
	case StateActive:
		i.world.Cancel(i.handle)
		i.state = StateCancelled
		i.dispatcher.Unregister(ctx, i)
		i.owner.forget(i)
		if i.dispatcher.Policy().DebugLogging {
			i.log.Debug(ctx, "qte cancelled", logger.String("qte", i.DisplayID()))
		}
		i.dispatcher.hooksOrNil().emitCancelled(ctx, i)
	case StateIdle:
		i.state = StateCancelled
		i.owner.forget(i)
	default:
	}
}

func (i *Instance) onTimeout() {
	i.handle = 0
	i.resolve(i.baseCtx, model.Outcome{
		TimedOut:       true,
		CompletionTime: i.def.Settings.Duration,
	})
}

func (i *Instance) resolve(ctx context.Context, out model.Outcome) {
	if i.state != StateActive {
		return
	}
	i.state = StateResolved
	i.outcome = out
	if i.handle.Valid() {
		i.world.Cancel(i.handle)
	}
	if i.dispatcher.Policy().DebugLogging {
		i.log.Debug(ctx, "qte resolved",
			logger.String("qte", i.DisplayID()),
			logger.String("result", out.Result()),
			logger.Bool("perfect", out.Perfect),
			logger.Duration("completion", out.CompletionTime),
		)
	}
	for _, s := range append([]subscriber(nil), i.subs...) {
		fn := s.onFailure
		if out.Success {
			fn = s.onSuccess
		}
		if fn != nil {
			fn(out)
		}
	}
	i.dispatcher.Unregister(ctx, i)
	i.owner.forget(i)
	i.dispatcher.hooksOrNil().emitResolved(ctx, i, out)
}

// Dispatcher returns the dispatcher the instance registers with.
func (i *Instance) Dispatcher() *Dispatcher { return i.dispatcher }
