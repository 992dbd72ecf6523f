package model

import "time"

// Reason says why a QTE failed.
type Reason int

// Failure reasons.
const (
	ReasonNone Reason = iota
	ReasonWrongInput
	ReasonTimeout
)

func (r Reason) String() string {
	switch r {
	case ReasonWrongInput:
		return "wrong_input"
	case ReasonTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Outcome is delivered once per resolved QTE.
type Outcome struct {
	Success  bool
	Perfect  bool
	TimedOut bool
	// CompletionTime is the elapsed time on success and the full duration on failure.
	CompletionTime time.Duration
}

// Reason classifies the outcome.
func (o Outcome) Reason() Reason {
	switch {
	case o.Success:
		return ReasonNone
	case o.TimedOut:
		return ReasonTimeout
	default:
		return ReasonWrongInput
	}
}

// Result is the label used in metrics and notifications.
func (o Outcome) Result() string {
	if o.Success {
		return "success"
	}
	return o.Reason().String()
}
