package sim

import (
	"github.com/freeeve/broadside/pkg/tactics"
)

// Mover steers one unit in a straight line toward its destination and
// implements tactics.Navigator. It does no path planning; a step that would
// enter a blocked cell slides along one axis or stops.
type Mover struct {
	world  *World
	grid   *NavGrid
	id     tactics.EntityID
	dest   tactics.Vec2
	moving bool
}

func NewMover(w *World, g *NavGrid, id tactics.EntityID) *Mover {
	return &Mover{world: w, grid: g, id: id}
}

func (m *Mover) SetDestination(p tactics.Vec2) {
	m.dest = p
	m.moving = true
}

func (m *Mover) Stop() { m.moving = false }

func (m *Mover) SampleWalkable(p tactics.Vec2, radius float64) (tactics.Vec2, bool) {
	if m.grid == nil {
		return p, true
	}
	return m.grid.SampleWalkable(p, radius)
}

// Destination returns the point being steered to, if moving.
func (m *Mover) Destination() (tactics.Vec2, bool) { return m.dest, m.moving }

// Advance moves the unit for dt seconds at its speed.
func (m *Mover) Advance(dt float64) {
	u, ok := m.world.Unit(m.id)
	if !ok || !u.Alive || !m.moving || dt <= 0 {
		return
	}
	delta := m.dest.Sub(u.Position)
	dist := delta.Len()
	step := u.Speed * dt
	if dist <= step {
		if m.walkable(m.dest) {
			u.Position = m.dest
		}
		m.moving = false
		return
	}
	dir, _ := delta.Normalize()
	u.Forward = dir

	next := u.Position.Add(dir.Scale(step))
	if m.walkable(next) {
		u.Position = next
		return
	}
	for _, slide := range []tactics.Vec2{{X: next.X, Y: u.Position.Y}, {X: u.Position.X, Y: next.Y}} {
		if m.walkable(slide) {
			u.Position = slide
			return
		}
	}
	m.moving = false
}

func (m *Mover) walkable(p tactics.Vec2) bool {
	return m.grid == nil || m.grid.Walkable(p)
}
