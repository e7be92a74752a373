package api

import (
	"encoding/json"
	"net/http"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
)

// selectionRequest is the POST /selections payload: a batch of toggles
// applied all-or-nothing.
type selectionRequest struct {
	Selections []selectionItem `json:"selections"`
}

type selectionItem struct {
	SubmissionID uint `json:"submission_id"`
	Selected     bool `json:"selected"`
}

// SelectionsHandler handles private-check selection batches.
type SelectionsHandler struct {
	deps     Dependencies
	resolver auth.Resolver
}

// NewSelectionsHandler creates a new selections handler.
func NewSelectionsHandler(deps Dependencies, resolver auth.Resolver) *SelectionsHandler {
	return &SelectionsHandler{deps: deps, resolver: resolver}
}

// HandlePostSelections handles POST /selections requests.
func (h *SelectionsHandler) HandlePostSelections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, err := identify(r, h.resolver, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_request",
			Message: "invalid JSON body",
		})
		return
	}
	if len(req.Selections) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_request",
			Message: "selections must not be empty",
		})
		return
	}

	checks := make(map[uint]bool, len(req.Selections))
	for _, item := range req.Selections {
		checks[item.SubmissionID] = item.Selected
	}
	if err := h.deps.SelectPrivate(r.Context(), userID, checks); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}
