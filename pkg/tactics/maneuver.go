package tactics

// Maneuver is a reposition pattern.
type Maneuver int

const (
	ManeuverOrbit Maneuver = iota
	ManeuverStrafe
	ManeuverBackstep
	ManeuverFlankShift
)

func (m Maneuver) String() string {
	switch m {
	case ManeuverOrbit:
		return "orbit"
	case ManeuverStrafe:
		return "strafe"
	case ManeuverBackstep:
		return "backstep"
	case ManeuverFlankShift:
		return "flank_shift"
	default:
		return "unknown"
	}
}

// chooseManeuver forces Backstep for a badly damaged unit and otherwise
// draws from the class weights.
func (b *Brain) chooseManeuver(self Entity) Maneuver {
	hp := self.HPFraction()
	if hp > 0 && hp <= b.tuning.BackstepHPThreshold {
		return ManeuverBackstep
	}

	w := b.tuning.ManeuverWeights
	weights := [...]float64{
		ManeuverOrbit:      max(w.Orbit, 0),
		ManeuverStrafe:     max(w.Strafe, 0),
		ManeuverBackstep:   max(w.Backstep, 0),
		ManeuverFlankShift: max(w.FlankShift, 0),
	}
	var total float64
	for _, v := range weights {
		total += v
	}
	if total <= 0 {
		return ManeuverOrbit
	}
	roll := b.rng.Float64() * total
	for m, v := range weights {
		if v > 0 && roll < v {
			return Maneuver(m)
		}
		roll -= v
	}
	// Float rounding left roll at the top edge; take the last weighted option.
	for m := len(weights) - 1; m >= 0; m-- {
		if weights[m] > 0 {
			return Maneuver(m)
		}
	}
	return ManeuverOrbit
}

// planManeuver picks a maneuver and computes its destination, snapped to
// walkable ground when the navigator can find some nearby.
func (b *Brain) planManeuver(self Entity) (Vec2, Maneuver) {
	m := b.chooseManeuver(self)
	raw := b.maneuverPoint(self, m)
	if p, ok := b.nav.SampleWalkable(raw, b.cfg.Movement.SampleRadius); ok {
		return p, m
	}
	return raw, m
}

// maneuverPoint computes the raw destination of a maneuver around the
// current target, or around the unit itself when it has none.
func (b *Brain) maneuverPoint(self Entity, m Maneuver) Vec2 {
	mv := b.cfg.Movement
	anchor := self.Position
	if tgt, ok := b.world.Entity(b.target); ok && b.target != 0 {
		anchor = tgt.Position
	}
	away := direction(anchor, self.Position, self.Forward)
	dr := b.desiredRange

	switch m {
	case ManeuverStrafe:
		return anchor.Add(away.Rotate(90).Scale(dr * mv.StrafeDistanceFactor))
	case ManeuverFlankShift:
		angle := b.tuning.FlankAngle.Draw(b.rng)
		return anchor.Add(away.Rotate(angle).Scale(dr * mv.FlankDistanceFactor))
	case ManeuverBackstep:
		return self.Position.Add(away.Scale(dr * mv.BackstepDistanceFactor))
	default:
		angle := mv.OrbitAngle.Draw(b.rng)
		return anchor.Add(away.Rotate(angle).Scale(dr * mv.OrbitDistanceFactor))
	}
}
