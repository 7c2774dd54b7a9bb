package tactics

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is a brain's tactical mode.
type State int

const (
	StateEngage State = iota
	StateReposition
	StateEscort
)

func (s State) String() string {
	switch s {
	case StateEngage:
		return "engage"
	case StateReposition:
		return "reposition"
	case StateEscort:
		return "escort"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Loadout is the precomputed weapon capability of a unit. A zero BestRange
// means the unit is unarmed.
type Loadout struct {
	BestRange  float64
	WeaponSize string
}

// Unit describes the controlled unit at spawn time.
type Unit struct {
	ID      EntityID
	Class   Class
	HitMask TeamMask
	Loadout Loadout
}

// Env carries the simulation-scoped collaborators shared by every brain.
type Env struct {
	Config *Config
	Focus  *FocusTracker
	World  WorldView
	Clock  Clock
	Rand   Rand
	Logger *zerolog.Logger
}

// Ports are the per-unit actuators.
type Ports struct {
	Nav Navigator
	Aim Aimer
}

// Brain is the decision state machine for one unit.
type Brain struct {
	unit   Unit
	tuning ClassTuning
	cfg    *Config
	focus  *FocusTracker
	world  WorldView
	clock  Clock
	rng    Rand
	nav    Navigator
	aim    Aimer
	log    zerolog.Logger

	state        State
	target       EntityID
	escort       EntityID
	locked       EntityID
	desiredRange float64
	nextReeval   float64
	stateEnd     float64
	destination  Vec2
	hasDest      bool
	maneuver     Maneuver
	focusLimit   int

	decisions int
	retargets int
}

// NewBrain creates a brain in the Engage state with a re-evaluation due on
// its first tick. The focus limit is drawn here, once.
func NewBrain(u Unit, env Env, ports Ports) *Brain {
	b := &Brain{
		unit:  u,
		cfg:   env.Config,
		focus: env.Focus,
		world: env.World,
		clock: env.Clock,
		rng:   env.Rand,
		nav:   ports.Nav,
		aim:   ports.Aim,
		state: StateEngage,
	}
	if b.cfg == nil {
		b.cfg = DefaultConfig()
	}
	if b.focus == nil {
		b.focus = NewFocusTracker()
	}
	if b.clock == nil {
		b.clock = stoppedClock{}
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(uint64(u.ID), 0))
	}
	if b.nav == nil {
		b.nav = noopNav{}
	}
	if b.aim == nil {
		b.aim = noopAim{}
	}
	parent := log.Logger
	if env.Logger != nil {
		parent = *env.Logger
	}
	b.log = parent.With().Uint64("unit", uint64(u.ID)).Str("class", u.Class.String()).Logger()

	b.tuning = b.cfg.ClassTuning(u.Class)
	b.focusLimit = b.cfg.DrawFocusLimit(u.Class, b.rng)
	b.nextReeval = b.clock.Now()
	return b
}

func (b *Brain) ID() EntityID          { return b.unit.ID }
func (b *Brain) State() State          { return b.state }
func (b *Brain) Target() EntityID      { return b.target }
func (b *Brain) Escort() EntityID      { return b.escort }
func (b *Brain) DesiredRange() float64 { return b.desiredRange }
func (b *Brain) FocusLimit() int       { return b.focusLimit }
func (b *Brain) Decisions() int        { return b.decisions }
func (b *Brain) Retargets() int        { return b.retargets }

// Destination returns the cached reposition point, if any.
func (b *Brain) Destination() (Vec2, bool) { return b.destination, b.hasDest }

// Tick advances the brain by one simulation step.
func (b *Brain) Tick() {
	self, ok := b.world.Entity(b.unit.ID)
	if !ok || !self.Alive {
		if b.target != 0 || b.locked != 0 {
			b.ClearFocus()
			b.aim.SetPreferredTarget(0)
		}
		return
	}
	now := b.clock.Now()

	if b.target != 0 && !b.isValidTarget(b.target) {
		b.log.Debug().Uint64("target", uint64(b.target)).Msg("Target lost")
		b.ClearFocus()
		b.nextReeval = now
	}
	if b.escort != 0 {
		if _, ok := b.ally(self, b.escort); !ok {
			b.escort = 0
		}
	}

	if now >= b.nextReeval {
		b.Reevaluate()
	}

	switch b.state {
	case StateReposition:
		b.tickReposition(self, now)
	case StateEscort:
		b.tickEscort(self)
	default:
		b.tickEngage(self)
	}

	b.aim.SetPreferredTarget(b.target)
}

// Reevaluate recomputes range, escort, target and state immediately and
// schedules the next re-evaluation.
func (b *Brain) Reevaluate() {
	self, ok := b.world.Entity(b.unit.ID)
	if !ok || !self.Alive {
		b.ClearFocus()
		return
	}
	now := b.clock.Now()
	b.decisions++

	b.desiredRange = b.computeDesiredRange()
	b.escort = b.pickEscort(self)
	b.nextReeval = now + b.cfg.ReevalInterval(b.unit.Class, b.rng)

	candidates := b.candidates()
	if id, reason := b.forcedTarget(self, candidates, now); id != 0 {
		if id != b.target {
			b.log.Debug().Uint64("target", uint64(id)).Str("reason", reason).Msg("Forced aggro")
		}
		b.setTarget(id)
		b.enter(StateEngage, now)
		return
	}

	b.selectTarget(self, candidates, now)
	b.selectState(self, now)
}

// ClearFocus drops the current target and releases its focus lock.
func (b *Brain) ClearFocus() {
	b.setTarget(0)
}

// setTarget changes the target and moves the focus lock with it, so the
// brain never holds more than one lock.
func (b *Brain) setTarget(id EntityID) {
	if id == b.target && id == b.locked {
		return
	}
	if b.locked != 0 {
		b.focus.Unlock(b.locked)
		b.locked = 0
	}
	if id != 0 {
		b.focus.Lock(id)
		b.locked = id
		if id != b.target {
			b.retargets++
		}
	}
	b.target = id
}

func (b *Brain) computeDesiredRange() float64 {
	lo := b.unit.Loadout
	if lo.BestRange <= 0 {
		return b.cfg.Targeting.FallbackRange
	}
	return lo.BestRange * b.cfg.DrawWeaponSizeMultiplier(lo.WeaponSize, b.rng)
}

// candidates returns every valid hostile other than self.
func (b *Brain) candidates() []Entity {
	all := b.world.Candidates()
	out := make([]Entity, 0, len(all))
	for _, e := range all {
		if e.ID == b.unit.ID || !b.world.IsValidTarget(e, b.unit.HitMask) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (b *Brain) isValidTarget(id EntityID) bool {
	if id == 0 || id == b.unit.ID {
		return false
	}
	e, ok := b.world.Entity(id)
	return ok && b.world.IsValidTarget(e, b.unit.HitMask)
}

// recentAttacker returns whoever damaged self within the attacker memory
// window, or 0.
func (b *Brain) recentAttacker(self Entity, now float64) EntityID {
	if self.LastAttacker == 0 || self.LastAttacker == self.ID {
		return 0
	}
	if now-self.LastDamagedAt > b.cfg.Targeting.AttackerMemorySeconds {
		return 0
	}
	return self.LastAttacker
}

// forcedTarget applies the aggro overrides in order: a recent attacker that
// is still valid, then the nearest priority target inside the class aggro
// range.
func (b *Brain) forcedTarget(self Entity, candidates []Entity, now float64) (EntityID, string) {
	if id := b.recentAttacker(self, now); id != 0 && b.isValidTarget(id) {
		return id, "damage"
	}
	aggro := b.tuning.AggroRange
	if aggro <= 0 {
		return 0, ""
	}
	var best EntityID
	bestDist := math.Inf(1)
	for _, c := range candidates {
		d := self.Position.Dist(c.Position)
		if d > aggro || d >= bestDist {
			continue
		}
		if b.cfg.IsPriorityTarget(c, d) {
			best, bestDist = c.ID, d
		}
	}
	if best == 0 {
		return 0, ""
	}
	return best, "proximity"
}

// pickEscort returns the ally this unit should guard when idle. The top tier
// escorts no one. An ally of the escort-priority class wins outright,
// otherwise the highest-class ally of any class; ties go to the nearest.
func (b *Brain) pickEscort(self Entity) EntityID {
	t := b.cfg.Targeting
	if t.TopTierClass != ClassUnknown && b.unit.Class >= t.TopTierClass {
		return 0
	}
	var (
		best     EntityID
		bestRank = -1
		bestDist = math.Inf(1)
	)
	for _, e := range b.world.Candidates() {
		if !b.isAlly(self, e) {
			continue
		}
		rank := int(e.Class)
		if t.EscortPriorityClass != ClassUnknown && e.Class == t.EscortPriorityClass {
			rank = int(ClassFlagship) + 1
		}
		d := self.Position.Dist(e.Position)
		if rank > bestRank || (rank == bestRank && d < bestDist) {
			best, bestRank, bestDist = e.ID, rank, d
		}
	}
	return best
}

func (b *Brain) isAlly(self, e Entity) bool {
	return e.ID != self.ID && e.Alive && e.Team&self.Team != 0
}

func (b *Brain) ally(self Entity, id EntityID) (Entity, bool) {
	e, ok := b.world.Entity(id)
	if !ok || !b.isAlly(self, e) {
		return Entity{}, false
	}
	return e, true
}

// selectState picks the tactical state once the target is resolved.
func (b *Brain) selectState(self Entity, now float64) {
	if b.target == 0 {
		if b.escort != 0 {
			b.enter(StateEscort, now)
			return
		}
		b.restartReposition(now)
		return
	}
	tgt, ok := b.world.Entity(b.target)
	if !ok {
		b.ClearFocus()
		b.enter(StateReposition, now)
		return
	}

	dist := self.Position.Dist(tgt.Position)
	dr := b.desiredRange
	t := b.cfg.Targeting
	if chase := b.tuning.MaxChaseFactor; chase > 0 && dist > dr*chase {
		b.log.Debug().Uint64("target", uint64(b.target)).Float64("distance", dist).Msg("Chase abandoned")
		b.ClearFocus()
		b.enter(StateReposition, now)
		return
	}
	if dist < dr*t.TooCloseFactor || dist > dr*t.TooFarFactor {
		b.enter(StateReposition, now)
		return
	}
	if b.rng.Float64() < b.tuning.RepositionChance {
		b.enter(StateReposition, now)
		return
	}
	b.enter(StateEngage, now)
}

// enter switches state. Entering Reposition from another state starts a new
// timed reposition with a fresh destination.
func (b *Brain) enter(s State, now float64) {
	if s == b.state {
		return
	}
	if s == StateReposition {
		b.stateEnd = now + b.cfg.RepositionDuration(b.unit.Class, b.rng)
	}
	b.hasDest = false
	b.log.Debug().Stringer("from", b.state).Stringer("to", s).Msg("State change")
	b.state = s
}

// restartReposition starts a fresh timed reposition even when the brain is
// already repositioning: the deadline is redrawn and the destination dropped.
func (b *Brain) restartReposition(now float64) {
	if b.state != StateReposition {
		b.log.Debug().Stringer("from", b.state).Stringer("to", StateReposition).Msg("State change")
	}
	b.state = StateReposition
	b.stateEnd = now + b.cfg.RepositionDuration(b.unit.Class, b.rng)
	b.hasDest = false
}

func (b *Brain) tickEngage(self Entity) {
	tgt, ok := b.world.Entity(b.target)
	if b.target == 0 || !ok {
		b.nav.Stop()
		return
	}
	dr := b.desiredRange
	dist := self.Position.Dist(tgt.Position)
	if math.Abs(dist-dr) <= dr*b.cfg.Targeting.OptimalDistanceTolerance {
		b.nav.Stop()
		return
	}
	dir := direction(tgt.Position, self.Position, self.Forward)
	b.nav.SetDestination(tgt.Position.Add(dir.Scale(dr)))
}

func (b *Brain) tickReposition(self Entity, now float64) {
	if now >= b.stateEnd {
		b.state = StateEngage
		b.hasDest = false
		b.tickEngage(self)
		return
	}
	if !b.hasDest {
		b.destination, b.maneuver = b.planManeuver(self)
		b.hasDest = true
	}
	if self.Position.Dist(b.destination) <= b.cfg.Movement.ArrivalTolerance {
		b.nav.Stop()
		return
	}
	b.nav.SetDestination(b.destination)
}

func (b *Brain) tickEscort(self Entity) {
	esc, ok := b.ally(self, b.escort)
	if !ok {
		b.nav.Stop()
		return
	}
	stand := b.tuning.EscortDistance
	if self.Position.Dist(esc.Position) <= stand {
		b.nav.Stop()
		return
	}
	dir := direction(esc.Position, self.Position, self.Forward)
	b.nav.SetDestination(esc.Position.Add(dir.Scale(stand)))
}

// BrainSnapshot is a point-in-time view of a brain for telemetry.
type BrainSnapshot struct {
	ID             EntityID `json:"id"`
	Class          Class    `json:"class"`
	State          State    `json:"state"`
	Target         EntityID `json:"target,omitempty"`
	Escort         EntityID `json:"escort,omitempty"`
	DesiredRange   float64  `json:"desired_range"`
	Destination    *Vec2    `json:"destination,omitempty"`
	Maneuver       string   `json:"maneuver,omitempty"`
	FocusLimit     int      `json:"focus_limit"`
	Decisions      int      `json:"decisions"`
	Retargets      int      `json:"retargets"`
	NextReevalTime float64  `json:"next_reeval"`
}

func (b *Brain) Snapshot() BrainSnapshot {
	s := BrainSnapshot{
		ID:             b.unit.ID,
		Class:          b.unit.Class,
		State:          b.state,
		Target:         b.target,
		Escort:         b.escort,
		DesiredRange:   b.desiredRange,
		FocusLimit:     b.focusLimit,
		Decisions:      b.decisions,
		Retargets:      b.retargets,
		NextReevalTime: b.nextReeval,
	}
	if b.hasDest {
		d := b.destination
		s.Destination = &d
		s.Maneuver = b.maneuver.String()
	}
	return s
}

type stoppedClock struct{}

func (stoppedClock) Now() float64 { return 0 }

type noopNav struct{}

func (noopNav) SetDestination(Vec2)                           {}
func (noopNav) Stop()                                         {}
func (noopNav) SampleWalkable(p Vec2, _ float64) (Vec2, bool) { return p, true }

type noopAim struct{}

func (noopAim) SetPreferredTarget(EntityID) {}
