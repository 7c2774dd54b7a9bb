package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/auth"
	"github.com/freeeve/broadside/internal/service"
	"github.com/freeeve/broadside/internal/sim"
)

// MatchHandler handles match endpoints.
type MatchHandler struct {
	matchSvc *service.MatchService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matchSvc *service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidScenario):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMatchNotRunning), errors.Is(err, service.ErrMatchRunning):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooManyMatches):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Error().Err(err).Msg("Match service failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *MatchHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	type scenario struct {
		Name   string `json:"name"`
		Fleets string `json:"fleets"`
	}
	var out []scenario
	for _, name := range sim.BuiltinScenarios() {
		sc, err := sim.ParseScenario(name)
		if err != nil {
			continue
		}
		out = append(out, scenario{Name: name, Fleets: sc.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

// StartMatch handles POST /api/v1/matches
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	var req service.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MaxSeconds < 0 {
		writeError(w, http.StatusBadRequest, "max_seconds must not be negative")
		return
	}

	m, err := h.matchSvc.StartMatch(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s, ok := auth.SpectatorFromContext(r.Context()); ok {
		log.Info().Str("matchId", m.ID).Str("spectatorId", s.ID).Msg("Match started by spectator")
	}
	writeJSON(w, http.StatusAccepted, m)
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchSvc.ListMatches(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.matchSvc.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Snapshot handles GET /api/v1/matches/{id}/snapshot
func (h *MatchHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.matchSvc.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(snap))
}

// Focus handles GET /api/v1/matches/{id}/focus
func (h *MatchHandler) Focus(w http.ResponseWriter, r *http.Request) {
	focus, err := h.matchSvc.Focus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, focus)
}

// StopMatch handles POST /api/v1/matches/{id}/stop
func (h *MatchHandler) StopMatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.matchSvc.StopMatch(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// DropLiveData handles DELETE /api/v1/matches/{id}/live
func (h *MatchHandler) DropLiveData(w http.ResponseWriter, r *http.Request) {
	if err := h.matchSvc.DropLiveData(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
