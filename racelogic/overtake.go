package racelogic

import (
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

const minDRSLap = 3

// UpdateDRS gates DRS availability per §4.6: active from lap 3 in dry
// weather with no safety car, and only for a vehicle sitting in an active
// zone, not leading, within 1.0s of the car ahead.
func (s *System) UpdateDRS(track *trackmodel.Track, state *racestate.RaceState) {
	enabled := state.CurrentLap >= minDRSLap && state.Weather == racestate.Dry && state.SafetyCar == racestate.SafetyCarNone

	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if !enabled || v.Position == 1 || !v.IsActive() || v.IsInPit {
			v.DRSOpen = false
			continue
		}
		v.DRSOpen = v.GapToAhead >= 0 && v.GapToAhead < 1.0 && inAnyDRSZone(track, v.DistanceOnLap)
	}
}

func inAnyDRSZone(track *trackmodel.Track, distanceOnLap float64) bool {
	d := trackmodel.Mod(distanceOnLap, track.TotalDistance)
	for _, z := range track.DRSZones {
		if d >= z.ActivationDistance && d <= z.EndDistance {
			return true
		}
	}
	return false
}

// RunOvertakes resolves battling pairs per §4.6: only vehicles flagged
// IsBattling with a sub-0.2s gap are eligible, and at most one outcome
// (success or the 10% failure penalty) is applied per vehicle per tick.
func (s *System) RunOvertakes(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, dt float64) {
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if !v.IsActive() || v.IsInPit || !v.IsBattling || v.GapToAhead < 0 || v.GapToAhead > 0.2 {
			continue
		}
		ahead := vehicleAhead(state, v)
		if ahead == nil {
			continue
		}
		s.attemptOvertake(r, track, v, ahead, dt)
	}
}

func vehicleAhead(state *racestate.RaceState, v *racestate.VehicleState) *racestate.VehicleState {
	for i := range state.Vehicles {
		if state.Vehicles[i].Position == v.Position-1 {
			return &state.Vehicles[i]
		}
	}
	return nil
}

func (s *System) attemptOvertake(r *rng.Source, track *trackmodel.Track, attacker, ahead *racestate.VehicleState, dt float64) {
	attackerDriver := s.driverByID(attacker.DriverID)
	aheadDriver := s.driverByID(ahead.DriverID)
	if attackerDriver == nil || aheadDriver == nil {
		return
	}

	skillDelta := attackerDriver.Skill.Racecraft - aheadDriver.Skill.Racecraft
	speedDelta := attacker.Speed - ahead.Speed
	tyreAgeDelta := float64(ahead.TyreAgeLaps - attacker.TyreAgeLaps)

	drsBonus := 0.0
	if attacker.DRSOpen {
		drsBonus = 30
	}

	score := 20 + 0.5*skillDelta + 2*speedDelta + drsBonus + 1.5*tyreAgeDelta - 20*track.OvertakingDifficulty

	probPerSecond := tyres.Clamp(0.20+0.5*score/100, 0.05, 0.95)
	if r.Chance(0.3) {
		probPerSecond = 0.5
	}
	probPerTick := probPerSecond * 0.1

	if r.Chance(probPerTick) {
		attacker.Speed += 5
		attacker.IsBattling = false
		return
	}

	if r.Chance(0.1) {
		attacker.Speed *= 0.95
	}
}
