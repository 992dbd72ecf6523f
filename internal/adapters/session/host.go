// Package session hosts a QTE dispatcher behind a single loop goroutine.
// Request goroutines talk to it through a bounded command queue; the loop
// also advances the timer manager every frame, so the domain state is only
// ever touched from one goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/qte/internal/adapters/mq/queue"
	"github.com/okian/qte/internal/domain/input"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/internal/domain/timer"
	"github.com/okian/qte/pkg/logger"
	"github.com/okian/qte/pkg/metrics"
)

// DefaultOwner is used when a start request names no owner.
const DefaultOwner = "default"

// StartRequest describes a QTE to create and start.
type StartRequest struct {
	Owner      string
	Priority   int
	Definition model.Definition
}

// Host owns one session: world clock, dispatcher, owners and instances.
type Host struct {
	log           logger.Logger
	tick          time.Duration
	manual        bool
	queueCapacity int
	streamBuffer  int
	historySize   int

	// loop-owned
	world      *timer.Manager
	dispatcher *qte.Dispatcher
	mapper     *input.Mapper
	owners     map[string]*qte.Owner
	running    map[string]*qte.Instance
	finished   map[string]Snapshot
	history    []string
	stats      Stats

	queue *queue.InMemoryQueue

	subsMu     sync.Mutex
	subs       map[int]chan Notification
	nextSub    int
	subsClosed bool

	shutdownOnce sync.Once
	shutdown     chan struct{}
	done         chan struct{}
}

// New builds a host enforcing policy. mapper may be nil when no QTE targets an action.
func New(policy qte.Policy, mapper *input.Mapper, opts ...Option) *Host {
	h := &Host{
		tick:          defaultTickInterval,
		queueCapacity: defaultQueueCapacity,
		streamBuffer:  defaultStreamBuffer,
		historySize:   defaultHistory,
		world:         timer.New(),
		mapper:        mapper,
		owners:        make(map[string]*qte.Owner),
		running:       make(map[string]*qte.Instance),
		finished:      make(map[string]Snapshot),
		subs:          make(map[int]chan Notification),
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Named("session")
	}
	h.queue = queue.NewInMemoryQueue(queue.WithCapacity(h.queueCapacity))

	dopts := []qte.Option{
		qte.WithLogger(h.log),
		qte.WithHooks(metricsHook{}, &lifecycleHook{h: h}),
	}
	if mapper != nil {
		dopts = append(dopts, qte.WithInputMapper(mapper))
	}
	h.dispatcher = qte.NewDispatcher(policy, dopts...)
	return h
}

// Run drives the loop until ctx is done or Shutdown is called.
func (h *Host) Run(ctx context.Context) {
	defer close(h.done)

	commands := h.queue.Dequeue(ctx)

	var frames <-chan time.Time
	if !h.manual {
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		frames = ticker.C
	}
	last := time.Now()

	h.log.Info(ctx, "session loop started",
		logger.Duration("tick", h.tick),
		logger.Bool("manual_time", h.manual),
	)
	for {
		select {
		case <-ctx.Done():
			h.teardown(context.WithoutCancel(ctx))
			return
		case <-h.shutdown:
			h.teardown(ctx)
			return
		case c, ok := <-commands:
			if !ok {
				h.teardown(ctx)
				return
			}
			c.Run(ctx)
		case now := <-frames:
			h.world.Advance(now.Sub(last))
			last = now
		}
	}
}

// Shutdown cancels every running QTE and stops the loop.
func (h *Host) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		h.log.Warn(ctx, "session shutdown timed out")
		return fmt.Errorf("session shutdown timed out: %w", ctx.Err())
	}
}

func (h *Host) teardown(ctx context.Context) {
	h.dispatcher.Deinitialize(ctx)
	_ = h.queue.Close()

	h.subsMu.Lock()
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	h.subsClosed = true
	h.subsMu.Unlock()
	h.log.Info(ctx, "session loop stopped")
}

// do runs fn on the loop and waits for it.
func (h *Host) do(ctx context.Context, name string, fn func(ctx context.Context)) error {
	select {
	case <-h.done:
		return ErrStopped
	default:
	}
	finished := make(chan struct{})
	err := h.queue.Enqueue(ctx, queue.Command{
		Name: name,
		Run: func(loopCtx context.Context) {
			defer close(finished)
			fn(loopCtx)
		},
	})
	switch {
	case errors.Is(err, queue.ErrFull):
		metrics.RecordErrorByComponent("session", "backpressure")
		return ErrBackpressure
	case errors.Is(err, queue.ErrClosed):
		return ErrStopped
	case err != nil:
		return err
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start creates and starts a QTE.
func (h *Host) Start(ctx context.Context, req StartRequest) (Snapshot, error) {
	var snap Snapshot
	var startErr error
	if err := h.do(ctx, "start", func(ctx context.Context) {
		snap, startErr = h.start(ctx, req)
	}); err != nil {
		return Snapshot{}, err
	}
	return snap, startErr
}

func (h *Host) start(ctx context.Context, req StartRequest) (Snapshot, error) {
	name := req.Owner
	if name == "" {
		name = DefaultOwner
	}
	owner, ok := h.owners[name]
	if !ok {
		owner = qte.NewOwner(name, h.world, h.dispatcher)
		h.owners[name] = owner
	}
	i, err := qte.NewInstance(ctx, owner, req.Definition, req.Priority)
	if err != nil {
		return Snapshot{}, err
	}
	if err := i.Start(ctx); err != nil {
		i.Cancel(ctx)
		return Snapshot{}, err
	}
	return snapshotOf(i), nil
}

// PressKey routes one key press and reports whether a QTE consumed it.
func (h *Host) PressKey(ctx context.Context, key model.Key) (bool, error) {
	var consumed bool
	err := h.do(ctx, "press", func(ctx context.Context) {
		consumed = h.dispatcher.TryConsumeInput(ctx, key)
		h.stats.Presses++
		if consumed {
			h.stats.Consumed++
		}
		metrics.RecordInputPress(consumed)
	})
	return consumed, err
}

// Cancel cancels one running QTE.
func (h *Host) Cancel(ctx context.Context, id string) error {
	var cancelErr error
	if err := h.do(ctx, "cancel", func(ctx context.Context) {
		i, ok := h.running[id]
		if !ok {
			cancelErr = fmt.Errorf("%w: %s", ErrNotFound, id)
			return
		}
		i.Cancel(ctx)
	}); err != nil {
		return err
	}
	return cancelErr
}

// CancelAll cancels every running QTE and returns how many there were.
func (h *Host) CancelAll(ctx context.Context) (int, error) {
	var n int
	err := h.do(ctx, "cancel_all", func(ctx context.Context) {
		n = h.dispatcher.Len()
		h.dispatcher.CancelAll(ctx)
	})
	return n, err
}

// DestroyOwner cancels the owner's QTEs and forgets it. The name can be reused.
func (h *Host) DestroyOwner(ctx context.Context, name string) (int, error) {
	var n int
	var destroyErr error
	if err := h.do(ctx, "destroy_owner", func(ctx context.Context) {
		owner, ok := h.owners[name]
		if !ok {
			destroyErr = fmt.Errorf("%w: %s", ErrNoOwner, name)
			return
		}
		n = len(owner.Instances())
		owner.Destroy(ctx)
		delete(h.owners, name)
	}); err != nil {
		return 0, err
	}
	return n, destroyErr
}

// Active returns snapshots of the running QTEs in priority order.
func (h *Host) Active(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	err := h.do(ctx, "active", func(context.Context) {
		active := h.dispatcher.Active()
		out = make([]Snapshot, 0, len(active))
		for _, i := range active {
			out = append(out, snapshotOf(i))
		}
	})
	return out, err
}

// Get returns a running or recently finished QTE.
func (h *Host) Get(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	var getErr error
	if err := h.do(ctx, "get", func(context.Context) {
		if i, ok := h.running[id]; ok {
			snap = snapshotOf(i)
			return
		}
		if s, ok := h.finished[id]; ok {
			snap = s
			return
		}
		getErr = fmt.Errorf("%w: %s", ErrNotFound, id)
	}); err != nil {
		return Snapshot{}, err
	}
	return snap, getErr
}

// Stats returns the session counters.
func (h *Host) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := h.do(ctx, "stats", func(ctx context.Context) {
		s = h.stats
		s.Active = h.dispatcher.Len()
		s.Owners = len(h.owners)
		s.QueueLen = h.queue.Len(ctx)
		s.Now = h.world.Now()
	})
	return s, err
}

// Step advances session time by dt on the loop. Used with WithManualTime.
func (h *Host) Step(ctx context.Context, dt time.Duration) error {
	return h.do(ctx, "step", func(context.Context) {
		h.world.Advance(dt)
	})
}

// Policy returns the dispatcher policy.
func (h *Host) Policy() qte.Policy { return h.dispatcher.Policy() }

// Subscribe returns a channel of lifecycle notifications and a func to stop.
// Slow subscribers lose notifications instead of stalling the loop.
func (h *Host) Subscribe() (<-chan Notification, func()) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	ch := make(chan Notification, h.streamBuffer)
	if h.subsClosed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	metrics.UpdateStreamClients(len(h.subs))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.subsMu.Lock()
			defer h.subsMu.Unlock()
			if c, ok := h.subs[id]; ok {
				close(c)
				delete(h.subs, id)
				metrics.UpdateStreamClients(len(h.subs))
			}
		})
	}
}

func (h *Host) publish(n Notification) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.stats.Dropped++
		}
	}
}

func (h *Host) remember(s Snapshot) {
	delete(h.running, s.ID)
	if _, ok := h.finished[s.ID]; !ok {
		h.history = append(h.history, s.ID)
	}
	h.finished[s.ID] = s
	if len(h.history) > h.historySize {
		evict := h.history[0]
		h.history = h.history[1:]
		delete(h.finished, evict)
	}
}
