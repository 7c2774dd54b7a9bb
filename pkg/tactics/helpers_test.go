package tactics

import (
	"maps"
	"math"
	"slices"
	"testing"
)

const (
	teamRed  TeamMask = 1
	teamBlue TeamMask = 2
)

type fakeWorld struct {
	entities map[EntityID]*Entity
}

func newFakeWorld(es ...Entity) *fakeWorld {
	w := &fakeWorld{entities: make(map[EntityID]*Entity)}
	for _, e := range es {
		w.add(e)
	}
	return w
}

func (w *fakeWorld) add(e Entity) *Entity {
	cp := e
	w.entities[e.ID] = &cp
	return &cp
}

func (w *fakeWorld) get(id EntityID) *Entity { return w.entities[id] }

func (w *fakeWorld) Candidates() []Entity {
	out := make([]Entity, 0, len(w.entities))
	for _, id := range slices.Sorted(maps.Keys(w.entities)) {
		out = append(out, *w.entities[id])
	}
	return out
}

func (w *fakeWorld) Entity(id EntityID) (Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (w *fakeWorld) IsValidTarget(e Entity, mask TeamMask) bool {
	return e.Alive && e.Team&mask != 0
}

type fakeNav struct {
	dest     Vec2
	moving   bool
	stops    int
	sets     int
	samples  int
	sampleFn func(p Vec2, radius float64) (Vec2, bool)
}

func (n *fakeNav) SetDestination(p Vec2) {
	n.dest = p
	n.moving = true
	n.sets++
}

func (n *fakeNav) Stop() {
	n.moving = false
	n.stops++
}

func (n *fakeNav) SampleWalkable(p Vec2, radius float64) (Vec2, bool) {
	n.samples++
	if n.sampleFn != nil {
		return n.sampleFn(p, radius)
	}
	return p, true
}

type fakeAim struct {
	target EntityID
	calls  int
}

func (a *fakeAim) SetPreferredTarget(id EntityID) {
	a.target = id
	a.calls++
}

type fakeClock struct{ now float64 }

func (c *fakeClock) Now() float64 { return c.now }

// fixedRand always returns the same value.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

// seqRand cycles through a fixed sequence.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func ship(id EntityID, team TeamMask, class Class, x, y float64) Entity {
	return Entity{
		ID:       id,
		Team:     team,
		Class:    class,
		Position: Vec2{X: x, Y: y},
		Forward:  Vec2{X: 1},
		HP:       100,
		MaxHP:    100,
		Alive:    true,
	}
}

// testConfig is DefaultConfig with a fully deterministic cruiser row.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Targeting.SwitchThreshold = 15
	cfg.Targeting.TooFarFactor = 1.4
	cfg.Targeting.TooCloseFactor = 0.5
	cfg.Targeting.OptimalDistanceTolerance = 0.2
	cfg.Classes["cruiser"] = ClassTuning{
		ReevalInterval:      Range{Min: 1, Max: 1},
		RepositionDuration:  Range{Min: 3, Max: 3},
		BackstepHPThreshold: 0.25,
		EscortDistance:      16,
		FlankAngle:          Range{Min: 60, Max: 60},
		ManeuverWeights:     ManeuverWeights{Orbit: 1},
		MaxChaseFactor:      3,
	}
	cfg.FocusCaps["cruiser"] = IntRange{Min: 2, Max: 2}
	return cfg
}

type harness struct {
	cfg   *Config
	world *fakeWorld
	nav   *fakeNav
	aim   *fakeAim
	clock *fakeClock
	focus *FocusTracker
	rng   Rand
}

// newHarness puts a red cruiser with id 1 at the origin.
func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		cfg:   testConfig(),
		world: newFakeWorld(ship(1, teamRed, ClassCruiser, 0, 0)),
		nav:   &fakeNav{},
		aim:   &fakeAim{},
		clock: &fakeClock{},
		focus: NewFocusTracker(),
		rng:   fixedRand(0.9),
	}
}

func (h *harness) self() *Entity { return h.world.get(1) }

func (h *harness) newBrain(t *testing.T) *Brain {
	t.Helper()
	return h.brainFor(Unit{
		ID:      1,
		Class:   ClassCruiser,
		HitMask: teamBlue,
		Loadout: Loadout{BestRange: 20},
	})
}

func (h *harness) brainFor(u Unit) *Brain {
	return NewBrain(u, Env{
		Config: h.cfg,
		Focus:  h.focus,
		World:  h.world,
		Clock:  h.clock,
		Rand:   h.rng,
	}, Ports{Nav: h.nav, Aim: h.aim})
}

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approxVec(a, b Vec2) bool { return a.Dist(b) < 1e-9 }
