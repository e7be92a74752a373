package api

import (
	"net/http"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     Dependencies
	resolver auth.Resolver
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, resolver auth.Resolver) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, resolver: resolver}
}

// HandleGetLeaderboard handles GET /leaderboard?board=public|private. The
// public board is open to everyone; the private board needs an identity so
// visibility rules can apply.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	board := r.URL.Query().Get("board")
	switch board {
	case "", "public":
		entries, err := h.deps.PublicLeaderboard(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	case "private":
		userID, err := identify(r, h.resolver, false)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		entries, err := h.deps.PrivateLeaderboard(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_board",
			Message: "board must be \"public\" or \"private\"",
		})
	}
}
