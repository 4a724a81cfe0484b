package api

import (
	"context"
	"net/http"

	"github.com/okian/crowdguess/internal/domain/types"
)

// BadgeDependencies lists a player's badges.
type BadgeDependencies interface {
	Badges(ctx context.Context, playerID string) ([]types.Badge, error)
}

// BadgesHandler handles badge requests.
type BadgesHandler struct {
	deps BadgeDependencies
}

// NewBadgesHandler creates a new badges handler.
func NewBadgesHandler(deps BadgeDependencies) *BadgesHandler {
	return &BadgesHandler{deps: deps}
}

// HandleList handles GET /players/{id}/badges.
func (h *BadgesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_badges"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	badges, err := h.deps.Badges(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if badges == nil {
		badges = []types.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}
