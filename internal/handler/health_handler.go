package handler

import (
	"net/http"

	"github.com/freeeve/broadside/internal/service"
)

// Health handles GET /healthz
func Health(matchSvc *service.MatchService, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"running":     len(matchSvc.Running()),
			"connections": hub.ConnectionCount(),
		})
	}
}
