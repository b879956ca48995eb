// Package trackmodel holds the static, never-mutated definitions a race is
// built from: tracks, their sectors and DRS zones, the pit lane, and the
// driver roster (§3 of the spec). Nothing in this package depends on race
// state — it is pure data plus the construction-time validation from §7's
// "Input invalid" error kind.
package trackmodel

// SectorType tags the kind of corner (or straight) a sector represents,
// which feeds both the physics base-speed table and incident risk.
type SectorType string

const (
	SectorStraight         SectorType = "straight"
	SectorCornerHighSpeed  SectorType = "corner_high_speed"
	SectorCornerMediumSpeed SectorType = "corner_medium_speed"
	SectorCornerLowSpeed   SectorType = "corner_low_speed"
)

// Sector is one contiguous slice of the lap.
type Sector struct {
	ID             int
	Name           string
	StartDistance  float64 // meters, inclusive
	EndDistance    float64 // meters, exclusive (mod TotalDistance)
	Type           SectorType
	Difficulty     float64 // [0,1]
	MaxSpeed       float64 // m/s; 0 means "use the sector-type base speed"
}

// DRSZone is a single drag-reduction-system activation window.
type DRSZone struct {
	DetectionDistance  float64
	ActivationDistance float64
	EndDistance        float64
}

// PitLane describes the physical pit road.
type PitLane struct {
	EntryDistance float64
	ExitDistance  float64
	SpeedLimit    float64 // m/s
	StopTime      float64 // seconds, 0 means "derive from lane length/speed limit"
}

// GeoCoordinates is optional real-world positioning, carried through only
// for external consumers (maps, UI) — the core never reads it.
type GeoCoordinates struct {
	Latitude  float64
	Longitude float64
}

// WeatherParams seeds the track's synthetic weather generator (§4.3).
type WeatherParams struct {
	Volatility     float64 // [0,1]
	RainProbability float64 // [0,1]
}

// Track is the static definition of a circuit.
type Track struct {
	ID                    string
	TotalDistance         float64 // meters
	DefaultTotalLaps      int
	TireDegradationFactor float64 // 1.0 is standard
	OvertakingDifficulty  float64 // [0,1]
	TrackDifficulty       float64 // [0,1]
	BaseTemperature       float64 // Celsius
	Geo                   *GeoCoordinates
	WeatherParams         WeatherParams
	Sectors               []Sector
	DRSZones              []DRSZone
	PitLane               PitLane
}

// SectorAt returns the 1-indexed sector containing distanceOnLap, wrapping
// modulo TotalDistance. It assumes ValidateTrack has already confirmed the
// sectors are contiguous and cover [0, TotalDistance).
func (t *Track) SectorAt(distanceOnLap float64) *Sector {
	d := mod(distanceOnLap, t.TotalDistance)
	for i := range t.Sectors {
		s := &t.Sectors[i]
		if d >= s.StartDistance && d < s.EndDistance {
			return s
		}
	}
	// Fallback for floating-point edge cases right at the wrap point.
	return &t.Sectors[len(t.Sectors)-1]
}

// mod is floating-point modulo that always returns a non-negative result,
// matching the spec's "distances are modular mod totalDistance" invariant
// even when distanceOnLap is transiently negative pre-start.
func mod(v, m float64) float64 {
	if m <= 0 {
		return 0
	}
	r := v - m*float64(int64(v/m))
	if r < 0 {
		r += m
	}
	return r
}

// Mod exposes the modular-distance helper for other packages (racelogic,
// physics) that need identical wraparound semantics.
func Mod(v, m float64) float64 { return mod(v, m) }
