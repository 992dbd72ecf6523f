package model

import (
	"fmt"
	"time"
)

// Settings holds the timing of one QTE.
type Settings struct {
	Duration time.Duration
	// PerfectRangeMin and PerfectRangeMax bound the perfect window as
	// fractions of Duration, inclusive.
	PerfectRangeMin float64
	PerfectRangeMax float64
}

// IsZero reports whether no timing was configured.
func (s Settings) IsZero() bool {
	return s == Settings{}
}

// Validate checks the duration and perfect window.
func (s Settings) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("%w: got %s", ErrNonPositiveDuration, s.Duration)
	}
	if s.PerfectRangeMin < 0 || s.PerfectRangeMax > 1 || s.PerfectRangeMin > s.PerfectRangeMax {
		return fmt.Errorf("%w: got [%.2f, %.2f]", ErrPerfectRange, s.PerfectRangeMin, s.PerfectRangeMax)
	}
	return nil
}

// Normalized maps elapsed onto [0,1] of Duration. Zero duration yields 0.
func (s Settings) Normalized(elapsed time.Duration) float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(elapsed) / float64(s.Duration)
}

// IsPerfect reports whether elapsed falls in the perfect window.
func (s Settings) IsPerfect(elapsed time.Duration) bool {
	n := s.Normalized(elapsed)
	return n >= s.PerfectRangeMin && n <= s.PerfectRangeMax
}

// InputSpec describes which press resolves a QTE.
type InputSpec struct {
	// TargetKey is used when TargetAction is empty.
	TargetKey Key
	// TargetAction takes precedence and is resolved through the input mapper.
	TargetAction Action
	// WrongInputFails makes a non-matching, non-ignored key fail the QTE.
	WrongInputFails bool
	// IgnoredKeys neither resolve nor fail this QTE.
	IgnoredKeys []Key
}

// UsesAction reports whether the target is an action.
func (in InputSpec) UsesAction() bool { return in.TargetAction != "" }

// Target renders the target for logs and snapshots.
func (in InputSpec) Target() string {
	if in.UsesAction() {
		return "action:" + string(in.TargetAction)
	}
	return string(in.TargetKey)
}

// Ignores reports whether k is in the ignore list.
func (in InputSpec) Ignores(k Key) bool { return ContainsKey(in.IgnoredKeys, k) }

// Validate requires a target.
func (in InputSpec) Validate() error {
	if !in.UsesAction() && !in.TargetKey.Valid() {
		return ErrNoTarget
	}
	return nil
}

// Definition is the immutable configuration of one QTE.
type Definition struct {
	Settings   Settings
	Input      InputSpec
	Identifier string
}

// DisplayID returns the identifier, or "none" when empty.
func (d Definition) DisplayID() string {
	if d.Identifier == "" {
		return "none"
	}
	return d.Identifier
}

// WithDefaults returns d with defaults applied when its settings are entirely zero.
func (d Definition) WithDefaults(defaults Settings) Definition {
	if d.Settings.IsZero() {
		d.Settings = defaults
	}
	return d
}

// Validate checks settings and input.
func (d Definition) Validate() error {
	if err := d.Settings.Validate(); err != nil {
		return err
	}
	return d.Input.Validate()
}

// Clone returns a copy that shares no slices with d.
func (d Definition) Clone() Definition {
	if d.Input.IgnoredKeys != nil {
		d.Input.IgnoredKeys = append([]Key(nil), d.Input.IgnoredKeys...)
	}
	return d
}
