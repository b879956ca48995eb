package trackmodel

// SkillScores are the driver's racecraft-adjacent ratings, each in [0,100].
type SkillScores struct {
	Racecraft     float64
	Consistency   float64
	TyreManagement float64
	WetWeather    float64
}

// PerformanceScores are per-discipline car-control ratings, each in [0,100].
type PerformanceScores struct {
	CorneringHigh          float64
	CorneringMedium        float64
	CorneringLow           float64
	Straight               float64
	TemperatureAdaptability float64
}

// PersonalityScores shape strategy jitter and incident risk, each in [0,100].
type PersonalityScores struct {
	Aggression       float64
	StressResistance float64
	TeamPlayer       float64
}

// Driver is the static roster entry for one car (§3). It never changes
// during a race; per-tick mutable state lives in racestate.VehicleState,
// keyed by Driver.ID.
type Driver struct {
	ID       string
	Name     string
	Team     string
	Color    string
	BasePace float64 // reference lap time in seconds, lower is faster

	Skill       SkillScores
	Performance PerformanceScores
	Personality PersonalityScores

	StartingMorale float64 // [0,100]
	StartingTrust  float64 // [0,100]
}
