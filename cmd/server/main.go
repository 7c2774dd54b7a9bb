package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/auth"
	"github.com/freeeve/broadside/internal/config"
	"github.com/freeeve/broadside/internal/handler"
	"github.com/freeeve/broadside/internal/logger"
	"github.com/freeeve/broadside/internal/middleware"
	"github.com/freeeve/broadside/internal/repository"
	redisrepo "github.com/freeeve/broadside/internal/repository/redis"
	"github.com/freeeve/broadside/internal/repository/store"
	"github.com/freeeve/broadside/internal/service"
	"github.com/freeeve/broadside/pkg/tactics"
)

func main() {
	logger.Init("broadside-server")
	cfg := config.Load()
	log.Info().Bool("sqlite", store.IsSQLite(cfg.DatabaseURL)).Bool("redis", cfg.RedisURL != "").Msg("Config loaded")

	// Tactics
	tcfg, err := tactics.Load(cfg.TacticsPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load tactics document, using defaults")
	}

	// Database
	matchRepo, closer, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer closer.Close()

	// Redis (optional)
	var cache repository.MatchCache
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		cache = redisClient
	}

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	matchSvc := service.NewMatchService(matchRepo, cache, wsHub, tcfg, service.Options{
		MaxMatches: cfg.MaxMatches,
		TickRate:   cfg.TickRate,
		Realtime:   cfg.Realtime,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr)
	matchHandler := handler.NewMatchHandler(matchSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, matchSvc)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	mux.HandleFunc("GET /healthz", handler.Health(matchSvc, wsHub))

	// Auth (public)
	mux.HandleFunc("POST /auth/spectator", authHandler.Spectate)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /scenarios", matchHandler.ListScenarios)
	api.HandleFunc("POST /matches", matchHandler.StartMatch)
	api.HandleFunc("GET /matches", matchHandler.ListMatches)
	api.HandleFunc("GET /matches/{id}", matchHandler.GetMatch)
	api.HandleFunc("GET /matches/{id}/snapshot", matchHandler.Snapshot)
	api.HandleFunc("GET /matches/{id}/focus", matchHandler.Focus)
	api.HandleFunc("POST /matches/{id}/stop", matchHandler.StopMatch)
	api.HandleFunc("DELETE /matches/{id}/live", matchHandler.DropLiveData)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(cfg.AllowedOrigins), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if err := matchSvc.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Matches did not stop in time")
	}
	log.Info().Msg("Server stopped")
}
