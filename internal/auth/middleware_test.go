package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freeeve/broadside/internal/model"
)

func TestMiddleware(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	access, _ := mgr.GenerateAccessToken("spec-42", "Alice")
	refresh, _ := mgr.GenerateRefreshToken("spec-42", "Alice")
	foreign, _ := NewJWTManager("other-secret").GenerateAccessToken("spec-42", "Alice")

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"access token", "Bearer " + access, http.StatusOK},
		{"lowercase scheme", "bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + access, http.StatusUnauthorized},
		{"scheme only", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"other secret", "Bearer " + foreign, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Spectator
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s, ok := SpectatorFromContext(r.Context())
				if !ok {
					t.Fatal("handler reached without a spectator")
				}
				got = s
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Middleware(mgr)(inner).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code == http.StatusOK && (got.ID != "spec-42" || got.DisplayName != "Alice") {
				t.Errorf("unexpected spectator %+v", got)
			}
		})
	}
}

func TestSpectatorContext(t *testing.T) {
	if _, ok := SpectatorFromContext(context.Background()); ok {
		t.Error("a bare context should carry no spectator")
	}
	ctx := WithSpectator(context.Background(), model.Spectator{ID: "s1", DisplayName: "Bo"})
	if s, ok := SpectatorFromContext(ctx); !ok || s.ID != "s1" {
		t.Errorf("expected spectator s1, got %+v (ok=%v)", s, ok)
	}
}
