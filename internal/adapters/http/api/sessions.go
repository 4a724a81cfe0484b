package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/logger"
)

// SessionDependencies defines the game session operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, playerID string) (types.SessionSnapshot, error)
	Session(ctx context.Context, sessionID string) (types.SessionSnapshot, error)
	Guess(ctx context.Context, sessionID, guess string) (types.SessionSnapshot, error)
	NextRound(ctx context.Context, sessionID string) (types.SessionSnapshot, error)
	Subscribe(sessionID string) (<-chan types.SessionSnapshot, func(), error)
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps   SessionDependencies
	logger logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies, l logger.Logger) *SessionsHandler {
	return &SessionsHandler{deps: deps, logger: l}
}

type createSessionRequest struct {
	PlayerID string `json:"player_id"`
}

type guessRequest struct {
	Guess string `json:"guess"`
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	playerID := strings.TrimSpace(req.PlayerID)
	snap, err := h.deps.StartSession(r.Context(), playerID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleGuess handles POST /sessions/{id}/guesses.
func (h *SessionsHandler) HandleGuess(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_guess"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Guess(r.Context(), r.PathValue("id"), req.Guess)
	if err != nil {
		writeErrorWithSession(w, Wrap(op, err), sessionOrNil(snap))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleNext handles POST /sessions/{id}/next.
func (h *SessionsHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_round"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.NextRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErrorWithSession(w, Wrap(op, err), sessionOrNil(snap))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func sessionOrNil(snap types.SessionSnapshot) *types.SessionSnapshot {
	if snap.SessionID == "" {
		return nil
	}
	return &snap
}
