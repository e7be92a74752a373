package api

import "net/http"

// StageHandler reports the competition window and current stage.
type StageHandler struct {
	deps Dependencies
}

// NewStageHandler creates a new stage handler.
func NewStageHandler(deps Dependencies) *StageHandler {
	return &StageHandler{deps: deps}
}

// HandleStage handles GET /stage requests.
func (h *StageHandler) HandleStage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.StageNow())
}
