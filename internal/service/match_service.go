package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/model"
	"github.com/freeeve/broadside/internal/repository"
	"github.com/freeeve/broadside/internal/sim"
	"github.com/freeeve/broadside/pkg/tactics"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchNotRunning = errors.New("match is not running")
	ErrMatchRunning    = errors.New("match is still running")
	ErrTooManyMatches  = errors.New("too many matches running")
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Event types pushed to spectators.
const (
	EventSnapshot = "match_snapshot"
	EventFinished = "match_finished"
)

// StartRequest describes a match to start.
type StartRequest struct {
	Name       string  `json:"name"`
	Scenario   string  `json:"scenario"`
	Seed       int64   `json:"seed"`
	MaxSeconds float64 `json:"max_seconds"`
	OpenArena  bool    `json:"open_arena"`
}

// Options tunes how the service runs matches.
type Options struct {
	MaxMatches    int
	TickRate      int
	SnapshotEvery int
	Realtime      bool
}

type runningMatch struct {
	match  model.Match
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	last  json.RawMessage
	focus map[string]int
}

// MatchService runs matches in the background, streams their snapshots to
// spectators and persists the results.
type MatchService struct {
	repo        repository.MatchRepository
	cache       repository.MatchCache
	broadcaster Broadcaster
	tactics     *tactics.Config
	opts        Options

	slots   chan struct{}
	mu      sync.RWMutex
	running map[string]*runningMatch
	wg      sync.WaitGroup
}

// NewMatchService creates a MatchService. cache may be nil.
func NewMatchService(repo repository.MatchRepository, cache repository.MatchCache, broadcaster Broadcaster, tcfg *tactics.Config, opts Options) *MatchService {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = 4
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 20
	}
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = max(opts.TickRate/5, 1)
	}
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &MatchService{
		repo:        repo,
		cache:       cache,
		broadcaster: broadcaster,
		tactics:     tcfg,
		opts:        opts,
		slots:       make(chan struct{}, opts.MaxMatches),
		running:     make(map[string]*runningMatch),
	}
}

// StartMatch validates the request and runs the match in the background.
// The returned record is in running status.
func (s *MatchService) StartMatch(ctx context.Context, req StartRequest) (*model.Match, error) {
	if req.Scenario == "" {
		req.Scenario = "skirmish"
	}
	sc, err := sim.ParseScenario(req.Scenario)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	select {
	case s.slots <- struct{}{}:
	default:
		return nil, ErrTooManyMatches
	}

	seed := sim.ResolveSeed(req.Seed)
	name := req.Name
	if name == "" {
		name = sc.Name
	}
	rm := &runningMatch{
		match: model.Match{
			ID:        uuid.NewString(),
			Name:      name,
			Scenario:  sc.String(),
			Seed:      seed,
			Status:    model.StatusRunning,
			CreatedAt: time.Now(),
		},
		done: make(chan struct{}),
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rm.cancel = cancel

	s.mu.Lock()
	s.running[rm.match.ID] = rm
	s.mu.Unlock()

	cfg := sim.ArenaConfig{
		ID:            rm.match.ID,
		Name:          name,
		Scenario:      req.Scenario,
		Seed:          seed,
		MaxSeconds:    req.MaxSeconds,
		TickRate:      s.opts.TickRate,
		SnapshotEvery: s.opts.SnapshotEvery,
		OpenArena:     req.OpenArena,
		Realtime:      s.opts.Realtime,
	}
	s.wg.Add(1)
	go s.run(runCtx, rm, cfg)

	m := rm.match
	return &m, nil
}

func (s *MatchService) run(ctx context.Context, rm *runningMatch, cfg sim.ArenaConfig) {
	defer func() {
		s.mu.Lock()
		delete(s.running, rm.match.ID)
		s.mu.Unlock()
		rm.cancel()
		<-s.slots
		close(rm.done)
		s.wg.Done()
	}()

	id := rm.match.ID
	sink := func(snap *model.Snapshot) { s.publishSnapshot(ctx, rm, snap) }
	result, err := sim.RunMatch(ctx, cfg, s.tactics, s.repo, sink)
	if err != nil {
		log.Error().Err(err).Str("matchId", id).Msg("Match failed")
		s.broadcaster.BroadcastMatchEvent(id, EventFinished, map[string]string{"match_id": id, "status": model.StatusFailed, "error": err.Error()})
		return
	}

	final := result.ToModel(cfg.Name, rm.match.CreatedAt)
	s.broadcaster.BroadcastMatchEvent(id, EventFinished, final)
	if s.cache != nil {
		bg := context.WithoutCancel(ctx)
		if data, err := json.Marshal(map[string]any{"type": EventFinished, "data": final}); err == nil {
			if err := s.cache.Publish(bg, id, data); err != nil {
				log.Warn().Err(err).Str("matchId", id).Msg("Failed to publish match result")
			}
		}
		if err := s.cache.SetFocus(bg, id, nil); err != nil {
			log.Warn().Err(err).Str("matchId", id).Msg("Failed to clear focus table")
		}
	}
}

func (s *MatchService) publishSnapshot(ctx context.Context, rm *runningMatch, snap *model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Str("matchId", snap.MatchID).Msg("Failed to marshal snapshot")
		return
	}
	rm.mu.Lock()
	rm.last = data
	rm.focus = snap.Focus
	rm.mu.Unlock()

	s.broadcaster.BroadcastMatchEvent(snap.MatchID, EventSnapshot, snap)
	if s.cache == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	if err := s.cache.SetSnapshot(bg, snap.MatchID, data); err != nil {
		log.Warn().Err(err).Str("matchId", snap.MatchID).Msg("Failed to cache snapshot")
	}
	if err := s.cache.SetFocus(bg, snap.MatchID, snap.Focus); err != nil {
		log.Warn().Err(err).Str("matchId", snap.MatchID).Msg("Failed to cache focus table")
	}
}

// StopMatch cancels a running match. The match is still recorded, with
// status stopped.
func (s *MatchService) StopMatch(ctx context.Context, id string) error {
	s.mu.RLock()
	rm, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		rm.cancel()
		return nil
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMatchNotFound
	}
	return ErrMatchNotRunning
}

// Wait blocks until the match finishes or ctx is done. Unknown or already
// finished matches return immediately.
func (s *MatchService) Wait(ctx context.Context, id string) error {
	s.mu.RLock()
	rm, ok := s.running[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	select {
	case <-rm.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetMatch returns a running match from memory or a finished one from the
// repository.
func (s *MatchService) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	s.mu.RLock()
	rm, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		m := rm.match
		return &m, nil
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// ListMatches returns recent matches, newest first.
func (s *MatchService) ListMatches(ctx context.Context, limit int) ([]model.Match, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Running returns the ids of matches currently in progress.
func (s *MatchService) Running() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns the latest snapshot JSON of a match, from memory while it
// runs and from the cache afterwards.
func (s *MatchService) Snapshot(ctx context.Context, id string) (json.RawMessage, error) {
	s.mu.RLock()
	rm, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		rm.mu.Lock()
		last := rm.last
		rm.mu.Unlock()
		if last != nil {
			return last, nil
		}
	}
	if s.cache != nil {
		data, err := s.cache.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		if data != nil {
			return data, nil
		}
	}
	return nil, ErrMatchNotFound
}

// Focus returns how many attackers are locked on each unit of a match.
// Finished matches have an empty table.
func (s *MatchService) Focus(ctx context.Context, id string) (map[string]int, error) {
	s.mu.RLock()
	rm, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		out := make(map[string]int, len(rm.focus))
		for k, v := range rm.focus {
			out[k] = v
		}
		return out, nil
	}
	if s.cache != nil {
		focus, err := s.cache.GetFocus(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(focus) > 0 {
			return focus, nil
		}
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return map[string]int{}, nil
}

// DropLiveData removes the cached snapshot and focus table of a finished
// match.
func (s *MatchService) DropLiveData(ctx context.Context, id string) error {
	s.mu.RLock()
	_, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		return ErrMatchRunning
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteMatchData(ctx, id)
}

// Shutdown stops every running match and waits for them to be recorded.
func (s *MatchService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, rm := range s.running {
		rm.cancel()
	}
	s.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
