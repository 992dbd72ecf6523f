package session

import (
	"time"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
)

// Snapshot is a point-in-time copy of an instance, safe to hand to other goroutines.
type Snapshot struct {
	ID         string
	Identifier string
	Owner      string
	Priority   int
	State      string
	Target     string
	Duration   time.Duration
	Elapsed    time.Duration
	Remaining  time.Duration
	PerfectMin float64
	PerfectMax float64
	PerfectNow bool
	// Outcome is set once the instance resolved.
	Outcome *model.Outcome
	Debug   string
}

func snapshotOf(i *qte.Instance) Snapshot {
	def := i.Definition()
	s := Snapshot{
		ID:         i.ID(),
		Identifier: def.Identifier,
		Owner:      i.Owner().Name(),
		Priority:   i.Priority(),
		State:      i.State().String(),
		Target:     def.Input.Target(),
		Duration:   def.Settings.Duration,
		Elapsed:    i.Elapsed(),
		Remaining:  i.Remaining(),
		PerfectMin: def.Settings.PerfectRangeMin,
		PerfectMax: def.Settings.PerfectRangeMax,
		PerfectNow: i.IsTimingPerfect(),
		Debug:      i.DebugLine(),
	}
	if out, ok := i.Outcome(); ok {
		s.Outcome = &out
	}
	return s
}

// Stats are the session counters.
type Stats struct {
	Started    uint64
	Succeeded  uint64
	Perfect    uint64
	WrongInput uint64
	TimedOut   uint64
	Cancelled  uint64
	Presses    uint64
	Consumed   uint64
	Dropped    uint64
	Active     int
	Owners     int
	QueueLen   int
	Now        time.Duration
}

// Notification types published to subscribers.
const (
	NotifyRegistered = "registered"
	NotifyResolved   = "resolved"
	NotifyCancelled  = "cancelled"
)

// Notification is one lifecycle event.
type Notification struct {
	Type     string
	Snapshot Snapshot
	At       time.Duration
}
