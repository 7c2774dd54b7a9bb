package sim

import (
	"testing"

	"github.com/freeeve/broadside/pkg/tactics"
)

func newDuelSim(t *testing.T) (*Simulation, *Unit, *Unit) {
	t.Helper()
	s := New(nil, nil, 42)
	red := s.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	blue := s.Spawn(testUnit("blue", 1, tactics.ClassCruiser, tactics.Vec2{X: 30}))
	return s, red, blue
}

func TestSimulationStepAcquiresTargets(t *testing.T) {
	s, red, blue := newDuelSim(t)
	s.Step(0.05)

	if s.Ticks() != 1 || s.Now() != 0.05 {
		t.Errorf("expected 1 tick at 0.05s, got %d at %v", s.Ticks(), s.Now())
	}
	rb, _ := s.Brain(red.ID)
	bb, _ := s.Brain(blue.ID)
	if rb.Target() != blue.ID || bb.Target() != red.ID {
		t.Fatalf("expected the cruisers to target each other, got %d and %d", rb.Target(), bb.Target())
	}
	if s.Focus().Count(blue.ID) != 1 || s.Focus().Count(red.ID) != 1 {
		t.Errorf("expected one lock on each, got %v", s.Focus().Snapshot())
	}
	if blue.HP >= blue.MaxHP || red.HP >= red.MaxHP {
		t.Error("both cruisers are in range and should have fired")
	}
	d, _ := s.Totals()
	if d != 2 {
		t.Errorf("expected 2 decisions, got %d", d)
	}
}

func TestSimulationDespawnReleasesFocus(t *testing.T) {
	s, red, blue := newDuelSim(t)
	s.Step(0.05)

	s.Despawn(red.ID)
	if n := s.Focus().Count(blue.ID); n != 0 {
		t.Errorf("despawned brain should release its lock, got %d", n)
	}
	if _, ok := s.Brain(red.ID); ok {
		t.Error("despawned brain should be gone")
	}
	if _, ok := s.World().Unit(red.ID); ok {
		t.Error("despawned unit should leave the world")
	}
	s.Despawn(red.ID)

	s.Step(0.05)
	bb, _ := s.Brain(blue.ID)
	if bb.Target() != 0 {
		t.Errorf("blue should drop its vanished target, got %d", bb.Target())
	}
	if s.Focus().Len() != 0 {
		t.Errorf("expected no locks, got %v", s.Focus().Snapshot())
	}
}

func TestSimulationDeathReleasesFocus(t *testing.T) {
	s, red, blue := newDuelSim(t)
	s.Step(0.05)

	s.World().ApplyDamage(blue.ID, red.ID, red.HP, s.Now())
	s.Step(0.05)
	if n := s.Focus().Count(blue.ID); n != 0 {
		t.Errorf("dead unit's lock should be released, got %d", n)
	}
	if n := s.Focus().Count(red.ID); n != 0 {
		t.Errorf("locks on a dead unit should be released, got %d", n)
	}
	if winner, over := s.Winner(); !over || winner != "blue" {
		t.Errorf("expected blue to win, got %q over=%v", winner, over)
	}
}

func TestSimulationReset(t *testing.T) {
	s, _, _ := newDuelSim(t)
	s.Step(0.05)
	if s.Focus().Len() == 0 {
		t.Fatal("expected locks before reset")
	}
	s.Reset()
	if s.Focus().Len() != 0 {
		t.Errorf("reset should clear every lock, got %v", s.Focus().Snapshot())
	}
}

func TestSimulationWinner(t *testing.T) {
	s, red, blue := newDuelSim(t)
	if _, over := s.Winner(); over {
		t.Error("match with two live teams is not over")
	}
	red.Alive = false
	blue.Alive = false
	if winner, over := s.Winner(); !over || winner != "" {
		t.Errorf("mutual kill should be a draw, got %q over=%v", winner, over)
	}
}

func TestSimulationSnapshot(t *testing.T) {
	s, red, blue := newDuelSim(t)
	s.Step(0.05)

	snap := s.Snapshot("m1")
	if snap.MatchID != "m1" || snap.Tick != 1 {
		t.Errorf("unexpected header: %+v", snap)
	}
	if len(snap.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(snap.Units))
	}
	us := snap.Units[0]
	if us.ID != uint64(red.ID) || us.Team != "red" || us.Class != "Cruiser" {
		t.Errorf("unexpected unit snapshot: %+v", us)
	}
	if us.Target != uint64(blue.ID) || us.State == "" || us.DesiredRange <= 0 {
		t.Errorf("brain fields should be filled: %+v", us)
	}
	if snap.Focus["2"] != 1 {
		t.Errorf("expected focus on unit 2, got %v", snap.Focus)
	}

	results := s.UnitResults("m1")
	if len(results) != 2 || results[0].Decisions != 1 || results[0].MatchID != "m1" {
		t.Errorf("unexpected unit results: %+v", results)
	}
}
