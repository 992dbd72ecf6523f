package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrRateLimited  = errors.New("rate limited")
)

// apiError records the handler operation and error kind behind a failure.
type apiError struct {
	op   string
	kind error
	err  error
}

func (e *apiError) Error() string {
	switch {
	case e.err != nil && e.kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	default:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
}

func (e *apiError) Is(target error) bool {
	return e.kind != nil && errors.Is(e.kind, target)
}

func (e *apiError) Unwrap() error { return e.err }

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &apiError{op: op, kind: kind}
}

// WrapKind wraps err as kind raised by op.
func WrapKind(op string, kind, err error) error {
	return &apiError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op, keeping its own kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &apiError{op: op, err: err}
}
