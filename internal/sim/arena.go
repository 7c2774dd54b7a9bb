package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/broadside/internal/logger"
	"github.com/freeeve/broadside/internal/model"
	"github.com/freeeve/broadside/internal/repository"
	"github.com/freeeve/broadside/pkg/tactics"
)

// ArenaConfig configures a single AI-vs-AI match.
type ArenaConfig struct {
	ID            string // match id, generated when empty
	Name          string
	Scenario      string  // built-in name or fleet string
	Seed          int64   // 0 = random
	MaxSeconds    float64 // simulated time cap, ends as a draw
	TickRate      int     // steps per simulated second
	SnapshotEvery int     // ticks between snapshots, 0 disables
	OpenArena     bool    // no obstacles
	Realtime      bool    // pace ticks at wall-clock speed
	DryRun        bool    // skip DB writes
}

// SnapshotSink receives live snapshots while a match runs.
type SnapshotSink func(*model.Snapshot)

// MatchResult describes the outcome of a completed match.
type MatchResult struct {
	MatchID   string
	Scenario  string
	Seed      int64
	Status    string
	Winner    string // team name or "" for draw
	Seconds   float64
	Ticks     int
	Decisions int
	Retargets int
	Survivors map[string]int
	Units     []model.UnitResult
	Elapsed   time.Duration
}

// ToModel converts the result into a persisted match record.
func (r *MatchResult) ToModel(name string, createdAt time.Time) *model.Match {
	finished := createdAt.Add(r.Elapsed)
	return &model.Match{
		ID:         r.MatchID,
		Name:       name,
		Scenario:   r.Scenario,
		Seed:       r.Seed,
		Status:     r.Status,
		Winner:     r.Winner,
		Seconds:    r.Seconds,
		Ticks:      r.Ticks,
		Decisions:  r.Decisions,
		Retargets:  r.Retargets,
		Survivors:  r.Survivors,
		CreatedAt:  createdAt,
		FinishedAt: &finished,
		Units:      r.Units,
	}
}

func (c *ArenaConfig) applyDefaults() {
	if c.MaxSeconds <= 0 {
		c.MaxSeconds = 300
	}
	if c.TickRate <= 0 {
		c.TickRate = 20
	}
	if c.Scenario == "" {
		c.Scenario = "skirmish"
	}
}

// spawnClearance is the obstacle-free radius kept around every spawn point.
const spawnClearance = 8.0

// RunMatch plays a full match between the scenario's fleets, recording it
// through repo unless cfg.DryRun is set. Cancelling ctx stops the match and
// records it as stopped.
func RunMatch(ctx context.Context, cfg ArenaConfig, tcfg *tactics.Config, repo repository.MatchRepository, sink SnapshotSink) (*MatchResult, error) {
	cfg.applyDefaults()
	sc, err := ParseScenario(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	seed := ResolveSeed(cfg.Seed)
	matchID := cfg.ID
	if matchID == "" {
		matchID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = sc.Name
	}

	units := sc.Units(defaultLayout)
	var grid *NavGrid
	if cfg.OpenArena {
		grid = NewOpenGrid(DefaultGridConfig().Size, DefaultGridConfig().CellSize)
	} else {
		grid = NewNavGrid(seed, DefaultGridConfig())
		for _, u := range units {
			grid.Clear(u.Position, spawnClearance)
		}
	}

	s := New(tcfg, grid, seed)
	ml := logger.ForMatch(matchID)
	s.SetLogger(ml)
	for _, u := range units {
		s.Spawn(u)
	}

	// Records land even when ctx is cancelled, so a stopped match is kept.
	dbCtx := context.WithoutCancel(ctx)
	createdAt := time.Now()
	if !cfg.DryRun && repo != nil {
		m := &model.Match{
			ID:        matchID,
			Name:      cfg.Name,
			Scenario:  sc.String(),
			Seed:      seed,
			Status:    model.StatusRunning,
			CreatedAt: createdAt,
		}
		if err := repo.Create(dbCtx, m); err != nil {
			return nil, fmt.Errorf("create match: %w", err)
		}
	}
	ml.Info().Str("scenario", sc.Name).Int64("seed", seed).Int("units", s.World().Len()).Msg("Match started")

	result := &MatchResult{
		MatchID:  matchID,
		Scenario: sc.String(),
		Seed:     seed,
		Status:   model.StatusFinished,
	}
	dt := 1 / float64(cfg.TickRate)
	var pace <-chan time.Time
	if cfg.Realtime {
		ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer ticker.Stop()
		pace = ticker.C
	}
	for {
		if ctx.Err() != nil {
			result.Status = model.StatusStopped
			break
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				continue
			case <-pace:
			}
		}
		s.Step(dt)
		if sink != nil && cfg.SnapshotEvery > 0 && s.Ticks()%cfg.SnapshotEvery == 0 {
			sink(s.Snapshot(matchID))
		}
		if winner, over := s.Winner(); over {
			result.Winner = winner
			break
		}
		if s.Now() >= cfg.MaxSeconds {
			break
		}
	}

	result.Seconds = s.Now()
	result.Ticks = s.Ticks()
	result.Decisions, result.Retargets = s.Totals()
	result.Survivors = s.World().AliveByTeam()
	result.Units = s.UnitResults(matchID)
	result.Elapsed = time.Since(createdAt)
	if sink != nil {
		sink(s.Snapshot(matchID))
	}
	s.Reset()

	if !cfg.DryRun && repo != nil {
		if err := repo.Finish(dbCtx, result.ToModel(cfg.Name, createdAt)); err != nil {
			return nil, fmt.Errorf("finish match: %w", err)
		}
	}

	switch {
	case result.Status == model.StatusStopped:
		ml.Info().Float64("seconds", result.Seconds).Msg("Match stopped")
	case result.Winner == "":
		ml.Info().Float64("seconds", result.Seconds).Msg("Match ended as draw")
	default:
		ml.Info().Str("winner", result.Winner).Float64("seconds", result.Seconds).Msg("Match won")
	}
	return result, nil
}
