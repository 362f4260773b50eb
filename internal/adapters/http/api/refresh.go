// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/pumptrack/pumptrack/internal/adapters/dispatch"
)

// refreshResponse acknowledges a queued refresh run.
type refreshResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandlePostRefresh handles POST /refresh requests. The run executes
// asynchronously; a full queue answers 429.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	runID, err := h.deps.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, dispatch.ErrQueueFull) {
			writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "queued", RunID: runID})
}
