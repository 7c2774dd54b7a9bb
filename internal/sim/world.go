package sim

import (
	"slices"

	"github.com/freeeve/broadside/pkg/tactics"
)

// Weapon is a unit's single hitscan weapon.
type Weapon struct {
	Range    float64 `json:"range"`
	Damage   float64 `json:"damage"`
	Cooldown float64 `json:"cooldown"`
	Size     string  `json:"size"`
}

// Unit is a combat entity in the headless world.
type Unit struct {
	tactics.Entity

	TeamName    string
	HitMask     tactics.TeamMask
	Speed       float64
	Weapon      Weapon
	Kills       int
	DamageDealt float64
}

// Loadout returns the precomputed capabilities handed to the unit's brain.
func (u *Unit) Loadout() tactics.Loadout {
	return tactics.Loadout{BestRange: u.Weapon.Range, WeaponSize: u.Weapon.Size}
}

// World holds every unit of a match and implements tactics.WorldView.
// It is not safe for concurrent use; a simulation owns one world.
type World struct {
	units  map[tactics.EntityID]*Unit
	order  []tactics.EntityID
	nextID tactics.EntityID
}

func NewWorld() *World {
	return &World{units: make(map[tactics.EntityID]*Unit)}
}

// Spawn adds u with a fresh ID and returns the stored unit. IDs start at 1
// and increase, so ID order is spawn order.
func (w *World) Spawn(u Unit) *Unit {
	w.nextID++
	u.ID = w.nextID
	u.Alive = u.HP > 0
	if u.MaxHP <= 0 {
		u.MaxHP = u.HP
	}
	stored := &u
	w.units[u.ID] = stored
	w.order = append(w.order, u.ID)
	return stored
}

// Remove deletes a unit. Removing an unknown ID does nothing.
func (w *World) Remove(id tactics.EntityID) {
	if _, ok := w.units[id]; !ok {
		return
	}
	delete(w.units, id)
	if i, ok := slices.BinarySearch(w.order, id); ok {
		w.order = slices.Delete(w.order, i, i+1)
	}
}

func (w *World) Unit(id tactics.EntityID) (*Unit, bool) {
	u, ok := w.units[id]
	return u, ok
}

// Units returns every unit in ID order.
func (w *World) Units() []*Unit {
	out := make([]*Unit, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.units[id])
	}
	return out
}

func (w *World) Len() int { return len(w.order) }

// Candidates returns a view of every unit, dead or alive, in ID order.
func (w *World) Candidates() []tactics.Entity {
	out := make([]tactics.Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.units[id].Entity)
	}
	return out
}

func (w *World) Entity(id tactics.EntityID) (tactics.Entity, bool) {
	u, ok := w.units[id]
	if !ok {
		return tactics.Entity{}, false
	}
	return u.Entity, true
}

// IsValidTarget reports whether e is alive and on a team in mask.
func (w *World) IsValidTarget(e tactics.Entity, mask tactics.TeamMask) bool {
	return e.ID != 0 && e.Alive && e.Team&mask != 0
}

// ApplyDamage deals amount to victim on behalf of attacker at time now and
// reports whether the hit was lethal.
func (w *World) ApplyDamage(attacker, victim tactics.EntityID, amount, now float64) bool {
	v, ok := w.units[victim]
	if !ok || !v.Alive || amount <= 0 {
		return false
	}
	dealt := min(amount, v.HP)
	v.HP -= dealt
	v.LastAttacker = attacker
	v.LastDamagedAt = now
	a, hasAttacker := w.units[attacker]
	if hasAttacker {
		a.DamageDealt += dealt
	}
	if v.HP > 0 {
		return false
	}
	v.HP = 0
	v.Alive = false
	if hasAttacker {
		a.Kills++
	}
	return true
}

// AliveByTeam counts living units per team name.
func (w *World) AliveByTeam() map[string]int {
	out := make(map[string]int)
	for _, id := range w.order {
		u := w.units[id]
		if _, ok := out[u.TeamName]; !ok {
			out[u.TeamName] = 0
		}
		if u.Alive {
			out[u.TeamName]++
		}
	}
	return out
}
