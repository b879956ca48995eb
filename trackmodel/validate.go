package trackmodel

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports a single construction-time defect in a track or
// driver definition. It is never recovered from silently — per §7, "Input
// invalid" errors are reported at construction and stop the build.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidateTrack checks the structural invariants §3 requires of a Track:
// sectors contiguous and covering [0, TotalDistance), a positive pit-lane
// speed limit, and a positive total distance.
func ValidateTrack(t *Track) error {
	if t.TotalDistance <= 0 {
		return errors.WithStack(&ValidationError{"TotalDistance", t.TotalDistance, "must be positive"})
	}
	if t.PitLane.SpeedLimit <= 0 {
		return errors.WithStack(&ValidationError{"PitLane.SpeedLimit", t.PitLane.SpeedLimit, "must be positive"})
	}
	if len(t.Sectors) == 0 {
		return errors.WithStack(&ValidationError{"Sectors", nil, "track must have at least one sector"})
	}

	sorted := make([]Sector, len(t.Sectors))
	copy(sorted, t.Sectors)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].StartDistance > sorted[j].StartDistance; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	if sorted[0].StartDistance != 0 {
		return errors.WithStack(&ValidationError{"Sectors[0].StartDistance", sorted[0].StartDistance, "sectors must start covering distance 0"})
	}
	for i := 0; i < len(sorted); i++ {
		if sorted[i].EndDistance <= sorted[i].StartDistance {
			return errors.WithStack(&ValidationError{"Sectors[].EndDistance", sorted[i].EndDistance, "sector end must exceed its start"})
		}
		if i+1 < len(sorted) && sorted[i].EndDistance != sorted[i+1].StartDistance {
			return errors.WithStack(&ValidationError{"Sectors", sorted[i].EndDistance, "sectors must be contiguous"})
		}
	}
	if sorted[len(sorted)-1].EndDistance != t.TotalDistance {
		return errors.WithStack(&ValidationError{"Sectors[last].EndDistance", sorted[len(sorted)-1].EndDistance, "sectors must cover the full lap"})
	}

	for _, z := range t.DRSZones {
		if z.ActivationDistance < z.DetectionDistance || z.EndDistance <= z.ActivationDistance {
			return errors.WithStack(&ValidationError{"DRSZones", z, "detection <= activation < end must hold"})
		}
	}

	return nil
}

// ValidateDriver checks that a driver's scores fall within their documented
// ranges.
func ValidateDriver(d *Driver) error {
	if d.ID == "" {
		return errors.WithStack(&ValidationError{"ID", d.ID, "driver id must not be empty"})
	}
	if d.BasePace <= 0 {
		return errors.WithStack(&ValidationError{"BasePace", d.BasePace, "must be positive"})
	}

	checks := map[string]float64{
		"Skill.Racecraft":                    d.Skill.Racecraft,
		"Skill.Consistency":                  d.Skill.Consistency,
		"Skill.TyreManagement":               d.Skill.TyreManagement,
		"Skill.WetWeather":                   d.Skill.WetWeather,
		"Performance.CorneringHigh":          d.Performance.CorneringHigh,
		"Performance.CorneringMedium":        d.Performance.CorneringMedium,
		"Performance.CorneringLow":           d.Performance.CorneringLow,
		"Performance.Straight":               d.Performance.Straight,
		"Performance.TemperatureAdaptability": d.Performance.TemperatureAdaptability,
		"Personality.Aggression":             d.Personality.Aggression,
		"Personality.StressResistance":       d.Personality.StressResistance,
		"Personality.TeamPlayer":              d.Personality.TeamPlayer,
		"StartingMorale":                      d.StartingMorale,
		"StartingTrust":                       d.StartingTrust,
	}
	for field, v := range checks {
		if v < 0 || v > 100 {
			return errors.WithStack(&ValidationError{field, v, "must be within [0,100]"})
		}
	}
	return nil
}

// ValidateDrivers checks the whole roster for per-driver validity and for
// duplicate ids, which would break the position-permutation invariant.
func ValidateDrivers(drivers []Driver) error {
	seen := make(map[string]bool, len(drivers))
	for i := range drivers {
		if err := ValidateDriver(&drivers[i]); err != nil {
			return err
		}
		if seen[drivers[i].ID] {
			return errors.WithStack(&ValidationError{"ID", drivers[i].ID, "duplicate driver id"})
		}
		seen[drivers[i].ID] = true
	}
	if len(drivers) == 0 {
		return errors.WithStack(&ValidationError{"drivers", nil, "roster must not be empty"})
	}
	return nil
}
