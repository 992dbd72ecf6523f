// Package timer provides a deterministic one-shot timer manager driven by
// the host frame loop. Time only moves when Advance is called.
package timer

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled timer. The zero Handle is never issued.
type Handle uint64

// Valid reports whether h was issued by a Manager.
func (h Handle) Valid() bool { return h != 0 }

type entry struct {
	handle   Handle
	start    time.Duration
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int
}

type queue []*entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(a, b int) bool {
	if q[a].deadline != q[b].deadline {
		return q[a].deadline < q[b].deadline
	}
	return q[a].seq < q[b].seq
}

func (q queue) Swap(a, b int) {
	q[a], q[b] = q[b], q[a]
	q[a].index = a
	q[b].index = b
}

func (q *queue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// Manager schedules one-shot callbacks against a session clock.
// It is not safe for concurrent use; the owning loop serializes access.
type Manager struct {
	now     time.Duration
	seq     uint64
	pending queue
	byID    map[Handle]*entry
}

// New returns a Manager at time zero.
func New() *Manager {
	return &Manager{byID: make(map[Handle]*entry)}
}

// Now returns the session time.
func (m *Manager) Now() time.Duration { return m.now }

// Len returns the number of pending timers.
func (m *Manager) Len() int { return len(m.pending) }

// ScheduleOnce runs fn once delay has elapsed. Negative delays count as zero.
func (m *Manager) ScheduleOnce(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	m.seq++
	e := &entry{
		handle:   Handle(m.seq),
		start:    m.now,
		deadline: m.now + delay,
		seq:      m.seq,
		fn:       fn,
	}
	heap.Push(&m.pending, e)
	m.byID[e.handle] = e
	return e.handle
}

// Cancel removes a pending timer. It reports whether one was removed.
func (m *Manager) Cancel(h Handle) bool {
	e, ok := m.byID[h]
	if !ok {
		return false
	}
	heap.Remove(&m.pending, e.index)
	delete(m.byID, h)
	return true
}

// Active reports whether h is still pending.
func (m *Manager) Active(h Handle) bool {
	_, ok := m.byID[h]
	return ok
}

// Elapsed returns time since h was scheduled, or zero if h is not pending.
func (m *Manager) Elapsed(h Handle) time.Duration {
	e, ok := m.byID[h]
	if !ok {
		return 0
	}
	return m.now - e.start
}

// Remaining returns time until h fires, or zero if h is not pending.
func (m *Manager) Remaining(h Handle) time.Duration {
	e, ok := m.byID[h]
	if !ok {
		return 0
	}
	return e.deadline - m.now
}

// Advance moves the clock forward by dt and fires every timer that falls due,
// in deadline order with ties broken by scheduling order. The clock reads the
// deadline of each timer while its callback runs. Callbacks may schedule and
// cancel timers; new timers due within dt fire in the same call.
// It returns the number of callbacks run.
func (m *Manager) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := m.now + dt
	fired := 0
	for len(m.pending) > 0 && m.pending[0].deadline <= target {
		e := heap.Pop(&m.pending).(*entry)
		delete(m.byID, e.handle)
		m.now = e.deadline
		fired++
		if e.fn != nil {
			e.fn()
		}
	}
	m.now = target
	return fired
}
