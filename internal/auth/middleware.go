package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/freeeve/broadside/internal/model"
)

type contextKey string

const spectatorKey contextKey = "spectator"

// Middleware returns an HTTP middleware that validates access tokens.
// Extracts the token from the Authorization header (Bearer scheme)
// and stores the spectator in the request context.
func Middleware(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
				return
			}

			claims, err := jwtMgr.ValidateKind(parts[1], KindAccess)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := WithSpectator(r.Context(), model.Spectator{ID: claims.SpectatorID, DisplayName: claims.Name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSpectator stores a spectator in the context.
func WithSpectator(ctx context.Context, s model.Spectator) context.Context {
	return context.WithValue(ctx, spectatorKey, s)
}

// SpectatorFromContext extracts the authenticated spectator from the request context.
func SpectatorFromContext(ctx context.Context) (model.Spectator, bool) {
	s, ok := ctx.Value(spectatorKey).(model.Spectator)
	return s, ok
}
