package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freeeve/broadside/internal/service"
)

func TestWriteJSONRawSnapshot(t *testing.T) {
	rec := httptest.NewRecorder()
	snap := json.RawMessage(`{"match_id":"m1","tick":42}`)
	writeJSON(rec, http.StatusOK, snap)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != string(snap) {
		t.Errorf("raw snapshot should pass through unchanged, got %s", got)
	}
}

func TestWriteJSONEmptyMatchList(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, []struct{}{})
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestDecodeStartRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"scenario":"duel","seed":7}`))
	var body struct {
		Scenario string `json:"scenario"`
		Seed     int64  `json:"seed"`
	}
	if err := decodeJSON(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Scenario != "duel" || body.Seed != 7 {
		t.Errorf("unexpected decode: %+v", body)
	}

	for _, raw := range []string{"", "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		if err := decodeJSON(req, &body); err == nil {
			t.Errorf("decodeJSON(%q): expected an error", raw)
		}
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrMatchNotFound, http.StatusNotFound, service.ErrMatchNotFound.Error()},
		{fmt.Errorf("parse: %w", service.ErrInvalidScenario), http.StatusBadRequest, ""},
		{service.ErrMatchNotRunning, http.StatusConflict, service.ErrMatchNotRunning.Error()},
		{service.ErrMatchRunning, http.StatusConflict, service.ErrMatchRunning.Error()},
		{service.ErrTooManyMatches, http.StatusTooManyRequests, service.ErrTooManyMatches.Error()},
		{errors.New("connection refused"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.msg != "" && body["error"] != tt.msg {
				t.Errorf("expected error %q, got %q", tt.msg, body["error"])
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"?limit=10", 10},
		{"?limit=0", 50},
		{"?limit=-3", 50},
		{"?limit=abc", 50},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/matches"+tt.query, nil)
		if got := queryInt(req, "limit", 50); got != tt.want {
			t.Errorf("queryInt(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
