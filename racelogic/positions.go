package racelogic

import (
	"sort"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

const minGapSpeed = 20.0

// UpdatePositionsAndGaps implements §4.6's leaderboard: vehicles ordered
// by (lapCount desc, distanceOnLap desc); position changes drift morale
// and concentration; gaps are computed from the unwrapped race distance.
func (s *System) UpdatePositionsAndGaps(track *trackmodel.Track, state *racestate.RaceState) {
	order := make([]*racestate.VehicleState, len(state.Vehicles))
	for i := range state.Vehicles {
		order[i] = &state.Vehicles[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.LapCount != b.LapCount {
			return a.LapCount > b.LapCount
		}
		return a.DistanceOnLap > b.DistanceOnLap
	})

	var leader *racestate.VehicleState
	if len(order) > 0 {
		leader = order[0]
		state.CurrentLap = leader.LapCount
	}

	for i, v := range order {
		v.LastPosition = v.Position
		v.Position = i + 1

		if v.Position != v.LastPosition && v.LastPosition != 0 {
			if v.Position < v.LastPosition {
				v.Morale = tyres.Clamp(v.Morale+10, 0, 100)
				v.Concentration = tyres.Clamp(v.Concentration-5, 0, 100)
			} else {
				v.Morale = tyres.Clamp(v.Morale-10, 0, 100)
				v.Concentration = tyres.Clamp(v.Concentration-10, 0, 100)
			}
		}

		if i == 0 {
			v.GapToAhead = -1
			v.GapToLeader = -1
			continue
		}
		ahead := order[i-1]
		v.GapToAhead = gapSeconds(ahead, v, track.TotalDistance)
		v.GapToLeader = gapSeconds(leader, v, track.TotalDistance)
	}
}

func gapSeconds(ahead, v *racestate.VehicleState, totalDistance float64) float64 {
	denom := v.Speed
	if denom < minGapSpeed {
		denom = minGapSpeed
	}
	return (ahead.RaceDistance(totalDistance) - v.RaceDistance(totalDistance)) / denom
}

// UpdateSpatialAwareness is the purely physical, lap-agnostic proximity
// pass from §4.6: cars are ordered by raw distanceOnLap on a circular
// strip, and dirty-air/battling/blue-flag flags are derived from the
// time-gap to the car immediately ahead (and behind) on that strip.
func (s *System) UpdateSpatialAwareness(track *trackmodel.Track, state *racestate.RaceState) {
	active := make([]*racestate.VehicleState, 0, len(state.Vehicles))
	for i := range state.Vehicles {
		if state.Vehicles[i].IsActive() && !state.Vehicles[i].IsInPit {
			active = append(active, &state.Vehicles[i])
		}
	}
	if len(active) == 0 {
		return
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].DistanceOnLap > active[j].DistanceOnLap })

	n := len(active)
	for i, v := range active {
		ahead := active[(i-1+n)%n]
		behind := active[(i+1)%n]

		aheadGap := circularGap(ahead.DistanceOnLap, v.DistanceOnLap, track.TotalDistance, v.Speed)
		behindGap := circularGap(v.DistanceOnLap, behind.DistanceOnLap, track.TotalDistance, behind.Speed)

		v.InDirtyAir = n > 1 && aheadGap < 1.5
		v.IsBattling = n > 1 && aheadGap < 0.4
		v.BlueFlag = n > 1 && behind.LapCount > v.LapCount && behindGap < 1.2
		v.SetSpatialBehindGap(behindGap)
	}
}

// circularGap is the time gap between a trailing car at distance `behind`
// and a leading car at distance `ahead`, treating the strip as circular.
func circularGap(ahead, behind, totalDistance, speed float64) float64 {
	d := trackmodel.Mod(ahead-behind, totalDistance)
	if speed < minGapSpeed {
		speed = minGapSpeed
	}
	return d / speed
}

// UpdateMoraleAndConcentration drifts both values toward their baselines
// and applies the dirty-air/battling/chaos adjustments from §4.6.
func (s *System) UpdateMoraleAndConcentration(state *racestate.RaceState, dt float64) {
	lap1Sector1Chaos := state.CurrentLap <= 1

	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if !v.IsActive() {
			continue
		}

		v.Morale += 0.01 * dt * (80 - v.Morale)
		if v.InDirtyAir {
			v.Morale -= 0.5 * dt
		}
		if v.SpatialBehindGap() < 0.5 {
			v.Morale += 0.2 * dt
		}
		v.Morale = tyres.Clamp(v.Morale, 0, 100)

		if lap1Sector1Chaos && v.CurrentSector == 1 {
			v.Concentration -= 10 * dt
		} else {
			v.Concentration += 5 * dt
		}
		if v.IsBattling {
			v.Concentration -= 2 * dt
		}
		if v.InDirtyAir {
			v.Concentration -= 1 * dt
		}
		v.Concentration = tyres.Clamp(v.Concentration, 0, 100)
	}
}
