package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/broadside/internal/model"
)

// MatchRepository defines match history operations.
type MatchRepository interface {
	Create(ctx context.Context, m *model.Match) error
	Finish(ctx context.Context, m *model.Match) error
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListRecent(ctx context.Context, limit int) ([]model.Match, error)
}

// MatchCache defines live match state operations (Redis).
type MatchCache interface {
	SetSnapshot(ctx context.Context, matchID string, snap json.RawMessage) error
	GetSnapshot(ctx context.Context, matchID string) (json.RawMessage, error)
	SetFocus(ctx context.Context, matchID string, counts map[string]int) error
	GetFocus(ctx context.Context, matchID string) (map[string]int, error)
	Publish(ctx context.Context, matchID string, event json.RawMessage) error
	DeleteMatchData(ctx context.Context, matchID string) error
}
