// Package racelogic implements §4.6: race initialization, the safety-car
// and incident controller, the pit-stop state machine, DRS gating and the
// overtake resolver, the leaderboard (positions/gaps), the physical
// spatial-awareness layer, morale/concentration drift, and checkered-flag/
// finish detection. A System instance is stateless; all mutable state
// lives on the racestate.RaceState and racestate.VehicleState it is passed.
package racelogic

import (
	"sort"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

const gridSpacingM = 16.0

// NewRaceState builds the empty scaffolding for a fresh race: status,
// safety-car state and per-sector conditions. It consumes no RNG draws, so
// the caller is free to run the weather system's InitializeForecast on the
// result before calling PopulateGrid — §4.6 requires the initial tyre
// choice to see the initial weather draw's rain intensity.
func NewRaceState(track *trackmodel.Track, totalLaps int) *racestate.RaceState {
	state := &racestate.RaceState{
		TrackID:     track.ID,
		TotalLaps:   totalLaps,
		Status:      racestate.StatusPreRace,
		SafetyCar:   racestate.SafetyCarNone,
		WeatherMode: racestate.WeatherModeSimulation,
		RubberLevel: 50,
	}
	state.RealWeather.LastPushAt = -1
	state.RealWeather.StaleAfter = 120

	state.SectorConditions = make([]racestate.SectorCondition, len(track.Sectors))
	for i := range state.SectorConditions {
		state.SectorConditions[i] = racestate.SectorCondition{WaterDepth: 0, RubberLevel: 50}
	}
	return state
}

// PopulateGrid runs qualifying, assigns grid order and distances, and
// chooses each driver's initial condition and tyre compound (§4.6). It
// must run after the weather system has set state.RainIntensityLevel from
// the initial forecast draw.
func PopulateGrid(r *rng.Source, track *trackmodel.Track, drivers []trackmodel.Driver, state *racestate.RaceState) {
	type qualiResult struct {
		driverIdx int
		lapTime   float64
	}
	results := make([]qualiResult, len(drivers))
	for i, d := range drivers {
		lapTime := d.BasePace + (100-d.Skill.Consistency)*0.005 + r.Range(-0.4, 0.4)
		results[i] = qualiResult{driverIdx: i, lapTime: lapTime}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].lapTime < results[j].lapTime })

	state.Vehicles = make([]racestate.VehicleState, len(drivers))
	for gridPos, res := range results {
		d := drivers[res.driverIdx]
		v := racestate.VehicleState{
			DriverID:      d.ID,
			DistanceOnLap: track.TotalDistance - float64(gridPos+1)*gridSpacingM + r.Range(-1, 1),
			Position:      gridPos + 1,
			LastPosition:  gridPos + 1,
			Morale:        d.StartingMorale,
			Concentration: 80,
			ERSMode:       racestate.ERSBalanced,
			PaceMode:      tyres.Balanced,
			GapToAhead:    -1,
			GapToLeader:   -1,
		}
		v.Condition = r.Range(0.99, 1.01)
		v.TyreCompound = initialCompound(r, state.RainIntensityLevel, &d)
		state.Vehicles[gridPos] = v
	}
}

// initialCompound chooses the starting tyre per §4.6: driven by the
// initial rain intensity when it's wet, otherwise an aggression-weighted
// soft/medium/hard pick that always consumes exactly one RNG draw.
func initialCompound(r *rng.Source, rainIntensity float64, d *trackmodel.Driver) tyres.Compound {
	roll := r.Next()

	switch {
	case rainIntensity > 60:
		return tyres.Wet
	case rainIntensity > 10:
		return tyres.Intermediate
	}

	aggression := d.Personality.Aggression / 100
	softChance := 0.25 + 0.35*aggression
	mediumChance := 0.45

	switch {
	case roll < softChance:
		return tyres.Soft
	case roll < softChance+mediumChance:
		return tyres.Medium
	default:
		return tyres.Hard
	}
}
