package repository

import (
	"errors"

	"github.com/okian/crowdguess/internal/domain/leaderboard"
)

// Sentinel kinds for store errors. Lookups of unknown players report the
// leaderboard's own sentinel.
var (
	ErrNotFound      = leaderboard.ErrPlayerNotFound
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidAmount = errors.New("invalid increment amount")
)
