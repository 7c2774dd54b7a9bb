package sim

import (
	"testing"

	"github.com/freeeve/broadside/pkg/tactics"
)

func testUnit(team string, i int, class tactics.Class, pos tactics.Vec2) Unit {
	h, _ := HullFor(class)
	return Unit{
		Entity: tactics.Entity{
			Team:       TeamBit(i),
			Class:      class,
			Position:   pos,
			Forward:    tactics.Vec2{X: 1},
			HP:         h.MaxHP,
			WeaponSize: h.Weapon.Size,
		},
		TeamName: team,
		HitMask:  (TeamBit(0) | TeamBit(1)) &^ TeamBit(i),
		Speed:    h.Speed,
		Weapon:   h.Weapon,
	}
}

func TestWorldSpawnAssignsIDs(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	b := w.Spawn(testUnit("blue", 1, tactics.ClassFrigate, tactics.Vec2{X: 10}))

	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1,2, got %d,%d", a.ID, b.ID)
	}
	if !a.Alive || a.MaxHP != a.HP {
		t.Errorf("spawned unit should be alive at full hp: %+v", a.Entity)
	}
	if w.Len() != 2 {
		t.Errorf("expected 2 units, got %d", w.Len())
	}
	cands := w.Candidates()
	if len(cands) != 2 || cands[0].ID != 1 || cands[1].ID != 2 {
		t.Errorf("candidates should be in id order: %+v", cands)
	}
}

func TestWorldRemove(t *testing.T) {
	w := NewWorld()
	w.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	w.Spawn(testUnit("blue", 1, tactics.ClassCruiser, tactics.Vec2{}))
	w.Remove(1)
	w.Remove(99)

	if _, ok := w.Entity(1); ok {
		t.Error("removed unit should be gone")
	}
	if w.Len() != 1 || w.Units()[0].ID != 2 {
		t.Errorf("expected only unit 2 left, got %d units", w.Len())
	}
}

func TestWorldIsValidTarget(t *testing.T) {
	w := NewWorld()
	red := w.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	blue := w.Spawn(testUnit("blue", 1, tactics.ClassCruiser, tactics.Vec2{}))

	if !w.IsValidTarget(blue.Entity, red.HitMask) {
		t.Error("enemy should be a valid target")
	}
	if w.IsValidTarget(red.Entity, red.HitMask) {
		t.Error("own team should not be a valid target")
	}
	blue.Alive = false
	if w.IsValidTarget(blue.Entity, red.HitMask) {
		t.Error("dead unit should not be a valid target")
	}
	if w.IsValidTarget(tactics.Entity{Alive: true, Team: TeamBit(1)}, red.HitMask) {
		t.Error("id 0 should never be a valid target")
	}
}

func TestWorldApplyDamage(t *testing.T) {
	w := NewWorld()
	red := w.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	blue := w.Spawn(testUnit("blue", 1, tactics.ClassDrone, tactics.Vec2{}))

	if killed := w.ApplyDamage(red.ID, blue.ID, 10, 1.5); killed {
		t.Fatal("10 damage should not kill a 30 hp drone")
	}
	if blue.HP != 20 || blue.LastAttacker != red.ID || blue.LastDamagedAt != 1.5 {
		t.Errorf("unexpected victim state: %+v", blue.Entity)
	}

	if killed := w.ApplyDamage(red.ID, blue.ID, 100, 2); !killed {
		t.Fatal("overkill should be lethal")
	}
	if blue.Alive || blue.HP != 0 {
		t.Errorf("victim should be dead at 0 hp: %+v", blue.Entity)
	}
	if red.Kills != 1 || red.DamageDealt != 30 {
		t.Errorf("expected 1 kill and 30 damage dealt, got %d and %v", red.Kills, red.DamageDealt)
	}
	if w.ApplyDamage(red.ID, blue.ID, 10, 3) {
		t.Error("damaging a dead unit should do nothing")
	}
}

func TestWorldAliveByTeam(t *testing.T) {
	w := NewWorld()
	w.Spawn(testUnit("red", 0, tactics.ClassCruiser, tactics.Vec2{}))
	blue := w.Spawn(testUnit("blue", 1, tactics.ClassCruiser, tactics.Vec2{}))
	blue.Alive = false

	got := w.AliveByTeam()
	if got["red"] != 1 {
		t.Errorf("expected 1 red alive, got %d", got["red"])
	}
	if n, ok := got["blue"]; !ok || n != 0 {
		t.Errorf("wiped team should be listed with 0, got %d (present=%v)", n, ok)
	}
}
