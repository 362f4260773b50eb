// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// DebugHandler serves the battle replay debug log.
type DebugHandler struct {
	deps Dependencies
}

// NewDebugHandler creates a new debug handler.
func NewDebugHandler(deps Dependencies) *DebugHandler {
	return &DebugHandler{deps: deps}
}

// HandleGetReplayLog handles GET /debug/replay requests. The body is
// empty unless the service runs with rating debug enabled.
func (h *DebugHandler) HandleGetReplayLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.deps.LogText(r.Context())))
}
