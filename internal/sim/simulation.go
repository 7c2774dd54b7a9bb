package sim

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/model"
	"github.com/freeeve/broadside/pkg/tactics"
)

// agent bundles the per-unit components driven by the simulation.
type agent struct {
	brain  *tactics.Brain
	mover  *Mover
	gunner *Gunner
}

// Simulation is a headless fixed-step combat loop. Every brain shares one
// focus tracker, one clock and one random source. Not safe for concurrent
// use.
type Simulation struct {
	cfg    *tactics.Config
	clock  *Clock
	rng    *rand.Rand
	focus  *tactics.FocusTracker
	world  *World
	grid   *NavGrid
	agents map[tactics.EntityID]*agent
	order  []tactics.EntityID
	ticks  int
	log    zerolog.Logger
}

// New creates an empty simulation. A nil cfg uses the built-in tuning and a
// nil grid gives an unbounded open plane.
func New(cfg *tactics.Config, grid *NavGrid, seed int64) *Simulation {
	if cfg == nil {
		cfg = tactics.DefaultConfig()
	}
	return &Simulation{
		cfg:    cfg,
		clock:  &Clock{},
		rng:    NewRand(seed),
		focus:  tactics.NewFocusTracker(),
		world:  NewWorld(),
		grid:   grid,
		agents: make(map[tactics.EntityID]*agent),
		log:    log.Logger,
	}
}

// SetLogger replaces the logger handed to brains spawned afterwards.
func (s *Simulation) SetLogger(l zerolog.Logger) { s.log = l }

// Spawn adds u to the world and gives it a brain, a mover and a gunner.
func (s *Simulation) Spawn(u Unit) *Unit {
	stored := s.world.Spawn(u)
	a := &agent{
		mover:  NewMover(s.world, s.grid, stored.ID),
		gunner: NewGunner(s.world, stored.ID),
	}
	a.brain = tactics.NewBrain(
		tactics.Unit{ID: stored.ID, Class: stored.Class, HitMask: stored.HitMask, Loadout: stored.Loadout()},
		tactics.Env{Config: s.cfg, Focus: s.focus, World: s.world, Clock: s.clock, Rand: s.rng, Logger: &s.log},
		tactics.Ports{Nav: a.mover, Aim: a.gunner},
	)
	s.agents[stored.ID] = a
	s.order = append(s.order, stored.ID)
	return stored
}

// Despawn removes a unit, releasing its focus lock first.
func (s *Simulation) Despawn(id tactics.EntityID) {
	a, ok := s.agents[id]
	if !ok {
		return
	}
	a.brain.ClearFocus()
	delete(s.agents, id)
	if i, ok := slices.BinarySearch(s.order, id); ok {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.world.Remove(id)
}

// Step advances the simulation by dt seconds. Brains tick in ascending ID
// order, then every unit moves, then every unit fires.
func (s *Simulation) Step(dt float64) {
	s.clock.Advance(dt)
	s.ticks++
	for _, id := range s.order {
		s.agents[id].brain.Tick()
	}
	for _, id := range s.order {
		s.agents[id].mover.Advance(dt)
	}
	now := s.clock.Now()
	for _, id := range s.order {
		s.agents[id].gunner.Fire(now)
	}
}

// Reset drops every focus lock held by the simulation's brains.
func (s *Simulation) Reset() {
	for _, id := range s.order {
		s.agents[id].brain.ClearFocus()
	}
	s.focus.Reset()
}

func (s *Simulation) World() *World                { return s.world }
func (s *Simulation) Focus() *tactics.FocusTracker { return s.focus }
func (s *Simulation) Now() float64                 { return s.clock.Now() }
func (s *Simulation) Ticks() int                   { return s.ticks }

// Brain returns the brain of a unit.
func (s *Simulation) Brain(id tactics.EntityID) (*tactics.Brain, bool) {
	a, ok := s.agents[id]
	if !ok {
		return nil, false
	}
	return a.brain, true
}

// Totals sums decisions and retargets over every brain.
func (s *Simulation) Totals() (decisions, retargets int) {
	for _, a := range s.agents {
		decisions += a.brain.Decisions()
		retargets += a.brain.Retargets()
	}
	return decisions, retargets
}

// Winner returns the only team with living units. It reports false while
// two or more teams still fight, and ("", true) when nobody is left.
func (s *Simulation) Winner() (string, bool) {
	var alive []string
	for team, n := range s.world.AliveByTeam() {
		if n > 0 {
			alive = append(alive, team)
		}
	}
	switch len(alive) {
	case 0:
		return "", true
	case 1:
		return alive[0], true
	default:
		return "", false
	}
}

// Snapshot captures the live state of every unit for spectators.
func (s *Simulation) Snapshot(matchID string) *model.Snapshot {
	snap := &model.Snapshot{
		MatchID: matchID,
		Tick:    s.ticks,
		Time:    s.clock.Now(),
		Units:   make([]model.UnitSnapshot, 0, len(s.order)),
		Focus:   make(map[string]int),
	}
	for _, u := range s.world.Units() {
		us := model.UnitSnapshot{
			ID:    uint64(u.ID),
			Team:  u.TeamName,
			Class: u.Class.String(),
			X:     u.Position.X,
			Y:     u.Position.Y,
			HP:    u.HP,
			MaxHP: u.MaxHP,
			Alive: u.Alive,
		}
		if a, ok := s.agents[u.ID]; ok && u.Alive {
			us.State = a.brain.State().String()
			us.Target = uint64(a.brain.Target())
			us.Escort = uint64(a.brain.Escort())
			us.DesiredRange = a.brain.DesiredRange()
			if p, moving := a.mover.Destination(); moving {
				us.Destination = &model.Point{X: p.X, Y: p.Y}
			}
		}
		snap.Units = append(snap.Units, us)
	}
	for id, n := range s.focus.Snapshot() {
		snap.Focus[strconv.FormatUint(uint64(id), 10)] = n
	}
	return snap
}

// UnitResults reports the end-of-match record of every unit.
func (s *Simulation) UnitResults(matchID string) []model.UnitResult {
	out := make([]model.UnitResult, 0, s.world.Len())
	for _, u := range s.world.Units() {
		r := model.UnitResult{
			MatchID:     matchID,
			UnitID:      uint64(u.ID),
			Team:        u.TeamName,
			Class:       u.Class.String(),
			Alive:       u.Alive,
			HP:          u.HP,
			MaxHP:       u.MaxHP,
			Kills:       u.Kills,
			DamageDealt: u.DamageDealt,
		}
		if a, ok := s.agents[u.ID]; ok {
			r.Decisions = a.brain.Decisions()
			r.Retargets = a.brain.Retargets()
		}
		out = append(out, r)
	}
	return out
}

func (s *Simulation) String() string {
	return fmt.Sprintf("sim{t=%.2f ticks=%d units=%d locks=%d}", s.clock.Now(), s.ticks, s.world.Len(), s.focus.Len())
}
