package session

import (
	"context"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/pkg/metrics"
)

// metricsHook mirrors the lifecycle into Prometheus.
type metricsHook struct{}

func (metricsHook) Name() string { return "metrics" }

func (metricsHook) OnRegistered(_ context.Context, i *qte.Instance) error {
	metrics.RecordQTEStarted()
	metrics.UpdateActiveQTEs(activeOf(i))
	return nil
}

func (metricsHook) OnResolved(_ context.Context, i *qte.Instance, out model.Outcome) error {
	metrics.RecordQTEResolved(out.Result(), out.Perfect, out.CompletionTime)
	metrics.UpdateActiveQTEs(activeOf(i))
	return metrics.ValidateResult(out.Result())
}

func (metricsHook) OnCancelled(_ context.Context, i *qte.Instance) error {
	metrics.RecordQTECancelled()
	metrics.UpdateActiveQTEs(activeOf(i))
	return nil
}

func activeOf(i *qte.Instance) int {
	return i.Dispatcher().Len()
}

// lifecycleHook keeps the host index and counters and feeds subscribers.
type lifecycleHook struct {
	h *Host
}

func (*lifecycleHook) Name() string { return "session" }

func (l *lifecycleHook) OnRegistered(_ context.Context, i *qte.Instance) error {
	h := l.h
	h.running[i.ID()] = i
	h.stats.Started++
	h.publish(Notification{Type: NotifyRegistered, Snapshot: snapshotOf(i), At: h.world.Now()})
	return nil
}

func (l *lifecycleHook) OnResolved(_ context.Context, i *qte.Instance, out model.Outcome) error {
	h := l.h
	switch out.Reason() {
	case model.ReasonNone:
		h.stats.Succeeded++
		if out.Perfect {
			h.stats.Perfect++
		}
	case model.ReasonWrongInput:
		h.stats.WrongInput++
	case model.ReasonTimeout:
		h.stats.TimedOut++
	}
	snap := snapshotOf(i)
	h.remember(snap)
	h.publish(Notification{Type: NotifyResolved, Snapshot: snap, At: h.world.Now()})
	return nil
}

func (l *lifecycleHook) OnCancelled(_ context.Context, i *qte.Instance) error {
	h := l.h
	h.stats.Cancelled++
	snap := snapshotOf(i)
	h.remember(snap)
	h.publish(Notification{Type: NotifyCancelled, Snapshot: snap, At: h.world.Now()})
	return nil
}
