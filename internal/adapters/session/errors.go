package session

import "errors"

// Sentinel errors returned by Host.
var (
	ErrBackpressure = errors.New("session command queue full")
	ErrStopped      = errors.New("session stopped")
	ErrNotFound     = errors.New("qte not found")
	ErrNoOwner      = errors.New("owner not found")
)
