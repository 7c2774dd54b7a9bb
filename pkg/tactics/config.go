package tactics

import (
	"math"
	"slices"
	"strings"
)

// Range is an inclusive float interval used for randomized tunables.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Draw samples uniformly between Min and Max, swapping inverted bounds.
func (r Range) Draw(rng Rand) float64 {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if rng == nil || lo == hi {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Draw samples uniformly from [Min, Max], swapping inverted bounds.
func (r IntRange) Draw(rng Rand) int {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if rng == nil || lo == hi {
		return lo
	}
	v := lo + int(math.Floor(rng.Float64()*float64(hi-lo+1)))
	return min(v, hi)
}

// Targeting holds the global target-scoring tunables.
type Targeting struct {
	SwitchThreshold          float64 `json:"switch_threshold"`
	AttackerMemorySeconds    float64 `json:"attacker_memory_seconds"`
	ThreatHeavyLightBonus    float64 `json:"threat_heavy_light_bonus"`
	ThreatAttackingBonus     float64 `json:"threat_attacking_bonus"`
	CriticalHPThreshold      float64 `json:"critical_hp_threshold"`
	CriticalHPBonus          float64 `json:"critical_hp_bonus"`
	LowHPThreshold           float64 `json:"low_hp_threshold"`
	LowHPBonus               float64 `json:"low_hp_bonus"`
	OptimalDistanceTolerance float64 `json:"optimal_distance_tolerance"`
	OptimalDistanceBonus     float64 `json:"optimal_distance_bonus"`
	TooFarFactor             float64 `json:"too_far_factor"`
	TooCloseFactor           float64 `json:"too_close_factor"`
	// TooFarPenalty and OverkillPenalty are magnitudes subtracted from a score.
	TooFarPenalty   float64 `json:"too_far_penalty"`
	OverkillPenalty float64 `json:"overkill_penalty"`
	// FallbackRange is the desired range of a unit with no weapons.
	FallbackRange float64 `json:"fallback_range"`
	// PriorityTarget is an expr-lang condition over CandidateEnv selecting
	// the targets that trigger proximity aggro.
	PriorityTarget      string `json:"priority_target"`
	EscortPriorityClass Class  `json:"escort_priority_class"`
	TopTierClass        Class  `json:"top_tier_class"`
	LargeWeaponSize     string `json:"large_weapon_size"`
}

// Movement holds the global maneuver tunables. Angles are in degrees.
type Movement struct {
	SampleRadius           float64 `json:"sample_radius"`
	OrbitAngle             Range   `json:"orbit_angle"`
	OrbitDistanceFactor    float64 `json:"orbit_distance_factor"`
	StrafeDistanceFactor   float64 `json:"strafe_distance_factor"`
	BackstepDistanceFactor float64 `json:"backstep_distance_factor"`
	FlankDistanceFactor    float64 `json:"flank_distance_factor"`
	ArrivalTolerance       float64 `json:"arrival_tolerance"`
}

// ManeuverWeights are the relative odds of each reposition maneuver.
type ManeuverWeights struct {
	Orbit      float64 `json:"orbit"`
	Strafe     float64 `json:"strafe"`
	Backstep   float64 `json:"backstep"`
	FlankShift float64 `json:"flank_shift"`
}

// ClassTuning is the per-classification engagement profile.
type ClassTuning struct {
	AggroRange          float64         `json:"aggro_range"`
	ReevalInterval      Range           `json:"reeval_interval"`
	RepositionDuration  Range           `json:"reposition_duration"`
	RepositionChance    float64         `json:"reposition_chance"`
	BackstepHPThreshold float64         `json:"backstep_hp_threshold"`
	EscortDistance      float64         `json:"escort_distance"`
	FlankAngle          Range           `json:"flank_angle"`
	ManeuverWeights     ManeuverWeights `json:"maneuver_weights"`
	// MaxChaseFactor multiplies the desired range to get the distance past
	// which a target is abandoned. Zero disables the limit.
	MaxChaseFactor float64 `json:"max_chase_factor"`
}

// defaultClassKey names the row used for classifications with no entry.
const defaultClassKey = "default"

// Config is the complete tactics tuning document. Treat it as read-only
// once loaded; every accessor is safe for concurrent use.
type Config struct {
	Targeting             Targeting              `json:"targeting"`
	Movement              Movement               `json:"movement"`
	Classes               map[string]ClassTuning `json:"-"`
	TargetValues          map[string]float64     `json:"target_values"`
	WeaponSizeMultipliers map[string]Range       `json:"weapon_size_multipliers"`
	FocusCaps             map[string]IntRange    `json:"focus_limits"`

	priority *priorityMatcher
}

// neutralClassTuning is used when neither the class nor the default row
// exists.
func neutralClassTuning() ClassTuning {
	return ClassTuning{
		ReevalInterval:     Range{Min: 1, Max: 1},
		RepositionDuration: Range{Min: 2, Max: 2},
		EscortDistance:     10,
		FlankAngle:         Range{Min: 45, Max: 45},
		ManeuverWeights:    ManeuverWeights{Orbit: 1},
	}
}

// ClassTuning returns the tuning row for c, falling back to the default row
// and then to a neutral row.
func (c *Config) ClassTuning(class Class) ClassTuning {
	if t, ok := c.Classes[class.key()]; ok {
		return t
	}
	if t, ok := c.Classes[defaultClassKey]; ok {
		return t
	}
	return neutralClassTuning()
}

// TargetValue returns the baseline desirability of a classification, or 0.
func (c *Config) TargetValue(class Class) float64 {
	return c.TargetValues[class.key()]
}

// FocusLimits returns the simultaneous-attacker cap range for a
// classification, or [1,1].
func (c *Config) FocusLimits(class Class) IntRange {
	if r, ok := c.FocusCaps[class.key()]; ok {
		return r
	}
	if r, ok := c.FocusCaps[defaultClassKey]; ok {
		return r
	}
	return IntRange{Min: 1, Max: 1}
}

// WeaponSizeMultiplier returns the multiplier range for a weapon size token.
// Matching is case-insensitive: an exact key wins, otherwise the first key
// (in sorted order) that is a prefix of the token or has the token as its
// prefix. Unknown tokens yield [1,1].
func (c *Config) WeaponSizeMultiplier(size string) Range {
	token := strings.ToLower(strings.TrimSpace(size))
	if token == "" {
		return Range{Min: 1, Max: 1}
	}
	if r, ok := c.WeaponSizeMultipliers[token]; ok {
		return r
	}
	keys := make([]string, 0, len(c.WeaponSizeMultipliers))
	for k := range c.WeaponSizeMultipliers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if SizeTokenMatches(k, token) {
			return c.WeaponSizeMultipliers[k]
		}
	}
	return Range{Min: 1, Max: 1}
}

// SizeTokenMatches reports whether two weapon size tokens refer to the same
// size: equal ignoring case, or one a prefix of the other ("L" ~ "Large").
func SizeTokenMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// ReevalInterval draws the next re-evaluation delay for a class.
func (c *Config) ReevalInterval(class Class, rng Rand) float64 {
	return c.ClassTuning(class).ReevalInterval.Draw(rng)
}

// RepositionDuration draws how long a reposition lasts for a class.
func (c *Config) RepositionDuration(class Class, rng Rand) float64 {
	return c.ClassTuning(class).RepositionDuration.Draw(rng)
}

// DrawFocusLimit draws a focus limit for a new unit of the given class.
// The result is never below 1.
func (c *Config) DrawFocusLimit(class Class, rng Rand) int {
	return max(c.FocusLimits(class).Draw(rng), 1)
}

// DrawWeaponSizeMultiplier draws a range multiplier for a weapon size token.
func (c *Config) DrawWeaponSizeMultiplier(size string, rng Rand) float64 {
	return c.WeaponSizeMultiplier(size).Draw(rng)
}

// IsPriorityTarget evaluates the configured priority-target condition for a
// candidate. Evaluation failures count as false.
func (c *Config) IsPriorityTarget(e Entity, distance float64) bool {
	if c.priority == nil {
		return e.IsPlayer
	}
	return c.priority.match(e, distance)
}

// Validate clamps tunables into usable ranges and normalizes table keys.
func (c *Config) Validate() {
	t := &c.Targeting
	t.SwitchThreshold = math.Max(t.SwitchThreshold, 0)
	t.AttackerMemorySeconds = math.Max(t.AttackerMemorySeconds, 0)
	t.CriticalHPThreshold = clamp(t.CriticalHPThreshold, 0, 1)
	t.LowHPThreshold = clamp(t.LowHPThreshold, 0, 1)
	t.OptimalDistanceTolerance = math.Max(t.OptimalDistanceTolerance, 0)
	t.TooFarFactor = math.Max(t.TooFarFactor, 0)
	t.TooCloseFactor = math.Max(t.TooCloseFactor, 0)
	t.TooFarPenalty = math.Abs(t.TooFarPenalty)
	t.OverkillPenalty = math.Abs(t.OverkillPenalty)
	if t.FallbackRange <= 0 {
		t.FallbackRange = defaultFallbackRange
	}

	m := &c.Movement
	m.SampleRadius = math.Max(m.SampleRadius, 0)
	m.OrbitAngle = m.OrbitAngle.ordered()
	m.ArrivalTolerance = math.Max(m.ArrivalTolerance, 0)

	classes := make(map[string]ClassTuning, len(c.Classes))
	for k, ct := range c.Classes {
		ct.RepositionChance = clamp(ct.RepositionChance, 0, 1)
		ct.BackstepHPThreshold = clamp(ct.BackstepHPThreshold, 0, 1)
		ct.AggroRange = math.Max(ct.AggroRange, 0)
		ct.EscortDistance = math.Max(ct.EscortDistance, 0)
		ct.MaxChaseFactor = math.Max(ct.MaxChaseFactor, 0)
		ct.ReevalInterval = ct.ReevalInterval.ordered()
		ct.RepositionDuration = ct.RepositionDuration.ordered()
		ct.FlankAngle = ct.FlankAngle.ordered()
		classes[strings.ToLower(k)] = ct
	}
	c.Classes = classes
	c.TargetValues = lowerKeys(c.TargetValues)
	c.WeaponSizeMultipliers = lowerKeys(c.WeaponSizeMultipliers)
	c.FocusCaps = lowerKeys(c.FocusCaps)
	for k, r := range c.FocusCaps {
		if r.Min > r.Max {
			r.Min, r.Max = r.Max, r.Min
		}
		r.Min = max(r.Min, 1)
		r.Max = max(r.Max, 1)
		c.FocusCaps[k] = r
	}
}

func (r Range) ordered() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

func lowerKeys[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
