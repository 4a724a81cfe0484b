package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNoFeed          = errors.New("no content feed configured")
	ErrInvalidPlayer   = errors.New("player id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrRoundInProgress = errors.New("current round is not resolved")
)
