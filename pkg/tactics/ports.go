package tactics

// EntityID is a stable handle assigned when an entity is spawned. Zero means
// "no entity".
type EntityID uint64

// TeamMask is a bit set of teams. An entity belongs to one team bit; a
// unit's hit mask lists the teams it may attack.
type TeamMask uint32

// Entity is the read-only view of a combat entity the brain reasons about.
type Entity struct {
	ID       EntityID
	Team     TeamMask
	Class    Class
	Position Vec2
	Forward  Vec2
	HP       float64
	MaxHP    float64
	Alive    bool
	IsPlayer bool
	// WeaponSize is the size token of the largest weapon the entity carries.
	WeaponSize string
	// LastAttacker and LastDamagedAt record who last damaged the entity and
	// when, in simulation seconds.
	LastAttacker  EntityID
	LastDamagedAt float64
}

// HPFraction returns current/max health, or 0 when MaxHP is unset.
func (e Entity) HPFraction() float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return e.HP / e.MaxHP
}

// Navigator moves a single unit.
type Navigator interface {
	// SetDestination begins movement toward p. Repeated calls with the same
	// point are harmless.
	SetDestination(p Vec2)
	// Stop halts movement and clears any pending path.
	Stop()
	// SampleWalkable returns the nearest traversable point within radius.
	SampleWalkable(p Vec2, radius float64) (Vec2, bool)
}

// WorldView enumerates the entities a brain can see.
type WorldView interface {
	Candidates() []Entity
	Entity(id EntityID) (Entity, bool)
	// IsValidTarget reports whether e is alive and hostile to a unit with
	// the given hit mask.
	IsValidTarget(e Entity, selfMask TeamMask) bool
}

// Aimer receives the brain's chosen target. Zero clears it.
type Aimer interface {
	SetPreferredTarget(id EntityID)
}

// Clock is a monotonic simulation clock in seconds.
type Clock interface {
	Now() float64
}

// Rand is the random source used for every stochastic decision.
type Rand interface {
	Float64() float64
}
