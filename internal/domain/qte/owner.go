package qte

import (
	"context"

	"github.com/okian/qte/pkg/logger"
)

// Owner is the gameplay object instances are created for. Destroying it
// cancels whatever it still has running.
type Owner struct {
	name       string
	world      World
	dispatcher *Dispatcher
	instances  []*Instance
	destroyed  bool
}

// NewOwner binds an owner to a world and dispatcher. A nil world yields
// instances that cannot start.
func NewOwner(name string, world World, d *Dispatcher) *Owner {
	return &Owner{name: name, world: world, dispatcher: d}
}

// Name returns the owner name.
func (o *Owner) Name() string { return o.name }

// IsDestroyed reports whether Destroy was called.
func (o *Owner) IsDestroyed() bool { return o.destroyed }

// Instances returns the owner's unfinished instances.
func (o *Owner) Instances() []*Instance {
	return append([]*Instance(nil), o.instances...)
}

// Destroy cancels every unfinished instance silently. Later creations fail.
func (o *Owner) Destroy(ctx context.Context) {
	if o == nil || o.destroyed {
		return
	}
	o.destroyed = true
	pending := o.Instances()
	for _, i := range pending {
		i.Cancel(ctx)
	}
	o.instances = nil
	if o.dispatcher != nil && o.dispatcher.policy.DebugLogging {
		o.dispatcher.log.Debug(ctx, "qte owner destroyed",
			logger.String("owner", o.name),
			logger.Int("cancelled", len(pending)),
		)
	}
}

func (o *Owner) adopt(i *Instance) {
	o.instances = append(o.instances, i)
}

func (o *Owner) forget(i *Instance) {
	for idx, c := range o.instances {
		if c == i {
			o.instances = append(o.instances[:idx], o.instances[idx+1:]...)
			return
		}
	}
}
