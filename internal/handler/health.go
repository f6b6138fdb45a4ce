package handler

import (
	"net/http"

	"draftdeck/internal/httputil"
)

// Health reports gateway liveness.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
