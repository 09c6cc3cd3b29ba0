package handlers

import "net/http"

// Health handles GET /health. The server has no external dependencies
// to probe, so liveness is sufficient.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
