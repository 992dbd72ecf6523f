package qte

import "errors"

// Sentinel errors returned by instance creation and start.
var (
	ErrInvalidDefinition = errors.New("invalid qte definition")
	ErrNoOwner           = errors.New("qte needs an owner")
	ErrOwnerDestroyed    = errors.New("qte owner destroyed")
	ErrNoWorld           = errors.New("qte has no world to run in")
	ErrAlreadyStarted    = errors.New("qte already started")
)
