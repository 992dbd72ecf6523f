package model

import "errors"

// Sentinel errors for definition validation.
var (
	ErrNonPositiveDuration = errors.New("duration must be positive")
	ErrPerfectRange        = errors.New("perfect range must satisfy 0 <= min <= max <= 1")
	ErrNoTarget            = errors.New("definition needs a target key or target action")
)
