package sim

import (
	"github.com/freeeve/broadside/pkg/tactics"
)

// Gunner fires one unit's weapon at the brain's preferred target and
// implements tactics.Aimer. Shots are instant hits.
type Gunner struct {
	world   *World
	id      tactics.EntityID
	target  tactics.EntityID
	readyAt float64
}

func NewGunner(w *World, id tactics.EntityID) *Gunner {
	return &Gunner{world: w, id: id}
}

func (g *Gunner) SetPreferredTarget(id tactics.EntityID) { g.target = id }

func (g *Gunner) Target() tactics.EntityID { return g.target }

// Fire shoots if the target is valid, in range and the weapon has cooled
// down. It reports whether a shot landed and whether it killed.
func (g *Gunner) Fire(now float64) (hit, killed bool) {
	if g.target == 0 || now < g.readyAt {
		return false, false
	}
	self, ok := g.world.Unit(g.id)
	if !ok || !self.Alive || self.Weapon.Damage <= 0 {
		return false, false
	}
	tgt, ok := g.world.Unit(g.target)
	if !ok || !g.world.IsValidTarget(tgt.Entity, self.HitMask) {
		return false, false
	}
	if self.Position.Dist(tgt.Position) > self.Weapon.Range {
		return false, false
	}
	g.readyAt = now + self.Weapon.Cooldown
	return true, g.world.ApplyDamage(g.id, g.target, self.Weapon.Damage, now)
}
