package tactics

import "math"

// score rates a candidate for this brain; higher is better.
func (b *Brain) score(self, c Entity, attacker EntityID) float64 {
	t := b.cfg.Targeting
	s := b.cfg.TargetValue(c.Class)

	if c.Class.IsLightHull() && SizeTokenMatches(c.WeaponSize, t.LargeWeaponSize) {
		s += t.ThreatHeavyLightBonus
	}
	if attacker != 0 && c.ID == attacker {
		s += t.ThreatAttackingBonus
	}

	switch hp := c.HPFraction(); {
	case hp < t.CriticalHPThreshold:
		s += t.CriticalHPBonus
	case hp < t.LowHPThreshold:
		s += t.LowHPBonus
	}

	dr := b.desiredRange
	dist := self.Position.Dist(c.Position)
	if math.Abs(dist-dr) <= dr*t.OptimalDistanceTolerance {
		s += t.OptimalDistanceBonus
	} else if dist > dr*t.TooFarFactor {
		s -= t.TooFarPenalty
	}

	// The count includes this brain's own lock on its current target.
	if b.focus.Count(c.ID) >= b.focusLimit {
		s -= t.OverkillPenalty
	}
	return s
}

// selectTarget scores every candidate and applies switch hysteresis: a
// valid current target is kept unless the best alternative beats it by at
// least SwitchThreshold.
func (b *Brain) selectTarget(self Entity, candidates []Entity, now float64) {
	if len(candidates) == 0 {
		b.ClearFocus()
		return
	}
	attacker := b.recentAttacker(self, now)

	var (
		best       EntityID
		bestScore  = math.Inf(-1)
		current    float64
		hasCurrent bool
	)
	for _, c := range candidates {
		s := b.score(self, c, attacker)
		if c.ID == b.target {
			current, hasCurrent = s, true
		}
		if s > bestScore {
			best, bestScore = c.ID, s
		}
	}

	if hasCurrent && best != b.target && bestScore < current+b.cfg.Targeting.SwitchThreshold {
		return
	}
	if best != b.target {
		b.log.Debug().
			Uint64("from", uint64(b.target)).
			Uint64("to", uint64(best)).
			Float64("score", bestScore).
			Msg("Retarget")
	}
	b.setTarget(best)
}
