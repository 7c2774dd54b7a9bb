package tactics

const (
	defaultFallbackRange  = 15.0
	defaultPriorityTarget = `IsPlayer || ClassName == "Flagship"`
)

// DefaultConfig returns the built-in tuning used when no document is
// loaded. Each call returns a fresh copy.
func DefaultConfig() *Config {
	cfg := &Config{
		Targeting: Targeting{
			SwitchThreshold:          15,
			AttackerMemorySeconds:    5,
			ThreatHeavyLightBonus:    20,
			ThreatAttackingBonus:     25,
			CriticalHPThreshold:      0.25,
			CriticalHPBonus:          30,
			LowHPThreshold:           0.5,
			LowHPBonus:               15,
			OptimalDistanceTolerance: 0.2,
			OptimalDistanceBonus:     10,
			TooFarFactor:             1.4,
			TooCloseFactor:           0.5,
			TooFarPenalty:            20,
			OverkillPenalty:          35,
			FallbackRange:            defaultFallbackRange,
			PriorityTarget:           defaultPriorityTarget,
			EscortPriorityClass:      ClassFlagship,
			TopTierClass:             ClassFlagship,
			LargeWeaponSize:          "Large",
		},
		Movement: Movement{
			SampleRadius:           6,
			OrbitAngle:             Range{Min: -75, Max: 75},
			OrbitDistanceFactor:    1.0,
			StrafeDistanceFactor:   0.8,
			BackstepDistanceFactor: 1.5,
			FlankDistanceFactor:    1.1,
			ArrivalTolerance:       1.5,
		},
		Classes: map[string]ClassTuning{
			defaultClassKey: {
				ReevalInterval:      Range{Min: 0.8, Max: 1.4},
				RepositionDuration:  Range{Min: 2, Max: 4},
				RepositionChance:    0.1,
				BackstepHPThreshold: 0.25,
				EscortDistance:      12,
				FlankAngle:          Range{Min: 60, Max: 110},
				ManeuverWeights:     ManeuverWeights{Orbit: 3, Strafe: 2, Backstep: 1, FlankShift: 2},
				MaxChaseFactor:      3,
			},
			"drone": {
				AggroRange:          30,
				ReevalInterval:      Range{Min: 0.4, Max: 0.8},
				RepositionDuration:  Range{Min: 1, Max: 2},
				RepositionChance:    0.2,
				BackstepHPThreshold: 0,
				EscortDistance:      6,
				FlankAngle:          Range{Min: 80, Max: 140},
				ManeuverWeights:     ManeuverWeights{Orbit: 4, Strafe: 3, Backstep: 0, FlankShift: 3},
				MaxChaseFactor:      4,
			},
			"fighter": {
				AggroRange:          40,
				ReevalInterval:      Range{Min: 0.5, Max: 1.0},
				RepositionDuration:  Range{Min: 1.5, Max: 3},
				RepositionChance:    0.2,
				BackstepHPThreshold: 0.2,
				EscortDistance:      8,
				FlankAngle:          Range{Min: 70, Max: 130},
				ManeuverWeights:     ManeuverWeights{Orbit: 4, Strafe: 3, Backstep: 1, FlankShift: 3},
				MaxChaseFactor:      4,
			},
			"corvette": {
				AggroRange:          35,
				ReevalInterval:      Range{Min: 0.7, Max: 1.2},
				RepositionDuration:  Range{Min: 2, Max: 3.5},
				RepositionChance:    0.15,
				BackstepHPThreshold: 0.25,
				EscortDistance:      10,
				FlankAngle:          Range{Min: 60, Max: 120},
				ManeuverWeights:     ManeuverWeights{Orbit: 3, Strafe: 3, Backstep: 1, FlankShift: 2},
				MaxChaseFactor:      3.5,
			},
			"frigate": {
				AggroRange:          30,
				ReevalInterval:      Range{Min: 0.8, Max: 1.4},
				RepositionDuration:  Range{Min: 2, Max: 4},
				RepositionChance:    0.12,
				BackstepHPThreshold: 0.25,
				EscortDistance:      12,
				FlankAngle:          Range{Min: 50, Max: 100},
				ManeuverWeights:     ManeuverWeights{Orbit: 3, Strafe: 2, Backstep: 1, FlankShift: 2},
				MaxChaseFactor:      3,
			},
			"destroyer": {
				AggroRange:          25,
				ReevalInterval:      Range{Min: 1.0, Max: 1.6},
				RepositionDuration:  Range{Min: 2.5, Max: 4},
				RepositionChance:    0.1,
				BackstepHPThreshold: 0.3,
				EscortDistance:      14,
				FlankAngle:          Range{Min: 45, Max: 90},
				ManeuverWeights:     ManeuverWeights{Orbit: 3, Strafe: 2, Backstep: 2, FlankShift: 1},
				MaxChaseFactor:      2.5,
			},
			"cruiser": {
				ReevalInterval:      Range{Min: 1.2, Max: 2.0},
				RepositionDuration:  Range{Min: 3, Max: 5},
				RepositionChance:    0.08,
				BackstepHPThreshold: 0.3,
				EscortDistance:      16,
				FlankAngle:          Range{Min: 40, Max: 80},
				ManeuverWeights:     ManeuverWeights{Orbit: 2, Strafe: 1, Backstep: 2, FlankShift: 1},
				MaxChaseFactor:      2.5,
			},
			"battleship": {
				ReevalInterval:      Range{Min: 1.5, Max: 2.5},
				RepositionDuration:  Range{Min: 3, Max: 6},
				RepositionChance:    0.05,
				BackstepHPThreshold: 0.35,
				EscortDistance:      20,
				FlankAngle:          Range{Min: 30, Max: 60},
				ManeuverWeights:     ManeuverWeights{Orbit: 2, Strafe: 1, Backstep: 3, FlankShift: 0},
				MaxChaseFactor:      2,
			},
			"carrier": {
				ReevalInterval:      Range{Min: 1.5, Max: 2.5},
				RepositionDuration:  Range{Min: 4, Max: 6},
				RepositionChance:    0.05,
				BackstepHPThreshold: 0.4,
				EscortDistance:      24,
				FlankAngle:          Range{Min: 30, Max: 60},
				ManeuverWeights:     ManeuverWeights{Orbit: 1, Strafe: 1, Backstep: 4, FlankShift: 0},
				MaxChaseFactor:      2,
			},
			"flagship": {
				ReevalInterval:      Range{Min: 1.5, Max: 2.5},
				RepositionDuration:  Range{Min: 3, Max: 5},
				RepositionChance:    0.05,
				BackstepHPThreshold: 0.3,
				EscortDistance:      0,
				FlankAngle:          Range{Min: 30, Max: 60},
				ManeuverWeights:     ManeuverWeights{Orbit: 2, Strafe: 1, Backstep: 2, FlankShift: 1},
				MaxChaseFactor:      2,
			},
		},
		TargetValues: map[string]float64{
			"drone":      5,
			"fighter":    10,
			"corvette":   20,
			"frigate":    30,
			"destroyer":  40,
			"cruiser":    55,
			"battleship": 70,
			"carrier":    80,
			"flagship":   100,
		},
		WeaponSizeMultipliers: map[string]Range{
			"small":  {Min: 0.75, Max: 0.85},
			"medium": {Min: 0.8, Max: 0.9},
			"large":  {Min: 0.85, Max: 0.95},
			"huge":   {Min: 0.9, Max: 1.0},
		},
		FocusCaps: map[string]IntRange{
			defaultClassKey: {Min: 2, Max: 3},
			"drone":         {Min: 1, Max: 1},
			"fighter":       {Min: 1, Max: 2},
			"corvette":      {Min: 2, Max: 2},
			"frigate":       {Min: 2, Max: 3},
			"destroyer":     {Min: 2, Max: 3},
			"cruiser":       {Min: 3, Max: 4},
			"battleship":    {Min: 3, Max: 5},
			"carrier":       {Min: 4, Max: 6},
			"flagship":      {Min: 5, Max: 8},
		},
	}
	cfg.Validate()
	// The built-in expression is known to compile.
	cfg.priority, _ = compilePriority(defaultPriorityTarget)
	return cfg
}
