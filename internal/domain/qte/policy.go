package qte

import (
	"time"

	"github.com/okian/qte/internal/domain/model"
)

// Policy is the developer configuration shared by a dispatcher and its instances.
// It is read-only once handed to NewDispatcher.
type Policy struct {
	GlobalIgnoredKeys []model.Key
	// DefaultSettings replace entirely zero definition settings.
	DefaultSettings model.Settings
	// DebugLogging enables per-event debug lines.
	DebugLogging bool
	// ShowDebugInfo asks hosts to draw Instance.DebugLine for running instances.
	ShowDebugInfo bool
}

// DefaultPolicy returns 2s QTEs with a [0.8, 1.0] perfect window, mouse axes
// ignored and debug logging on.
func DefaultPolicy() Policy {
	return Policy{
		GlobalIgnoredKeys: []model.Key{"mouse_x", "mouse_y"},
		DefaultSettings: model.Settings{
			Duration:        2 * time.Second,
			PerfectRangeMin: 0.8,
			PerfectRangeMax: 1.0,
		},
		DebugLogging: true,
	}
}

// IsGloballyIgnored reports whether key is ignored by every QTE.
func (p Policy) IsGloballyIgnored(key model.Key) bool {
	return model.ContainsKey(p.GlobalIgnoredKeys, key)
}

func (p Policy) clone() Policy {
	p.GlobalIgnoredKeys = append([]model.Key(nil), p.GlobalIgnoredKeys...)
	return p
}
