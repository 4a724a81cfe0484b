package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/crowdguess/internal/app"
	"github.com/okian/crowdguess/internal/domain/leaderboard"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/round"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Error records the handler operation and error kind behind a failed request.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind builds an error of a kind with no underlying cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches an operation to an upstream error.
func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// WrapKind attaches an operation and a kind to an upstream error.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, round.ErrEmptyGuess),
		errors.Is(err, service.ErrInvalidPlayer),
		errors.Is(err, leaderboard.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, leaderboard.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, round.ErrRoundResolved):
		return http.StatusConflict, "round_resolved"
	case errors.Is(err, service.ErrRoundInProgress):
		return http.StatusConflict, "round_in_progress"
	case errors.Is(err, model.ErrNoCorpusAvailable):
		return http.StatusGone, "no_corpus"
	case errors.Is(err, model.ErrFeedUnavailable):
		return http.StatusBadGateway, "feed_unavailable"
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
