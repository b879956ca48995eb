package racelogic

import (
	"sort"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

// RunSafetyCarAndIncidents is the per-tick safety-car timer countdown plus
// the incident risk sampling from §4.6. Only one incident fires per tick.
func (s *System) RunSafetyCarAndIncidents(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, dt float64) {
	if state.SafetyCar != racestate.SafetyCarNone {
		timer := state.SafetyCarTimer() - dt
		if timer <= 0 {
			s.endSafetyCarPeriod(r, track, state)
		} else {
			state.SetSafetyCarTimer(timer)
		}
		return
	}

	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if !v.IsActive() || v.IsInPit || v.HasFinished {
			continue
		}
		if s.sampleIncident(r, track, state, v, dt) {
			return
		}
	}
}

func (s *System) endSafetyCarPeriod(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState) {
	wasRedFlag := state.SafetyCar == racestate.SafetyCarRedFlag
	state.SafetyCar = racestate.SafetyCarNone
	state.SetSafetyCarTimer(0)
	if wasRedFlag {
		s.redFlagRestart(track, state)
	}
}

// sampleIncident draws the per-vehicle incident risk and, on a positive
// draw, derives severity and applies its consequences. Returns true if an
// incident fired this tick (only one may fire).
func (s *System) sampleIncident(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState, dt float64) bool {
	risk := 1e-5 * dt

	d := s.driverByID(v.DriverID)
	if d == nil {
		return false
	}

	concentrationShortfall := 1 + (100-v.Concentration)/100*9
	risk *= concentrationShortfall

	if v.IsBattling {
		risk *= 4
	}
	if v.IsBattling && d.Personality.Aggression > 70 {
		risk *= 1.5
	}
	if v.InDirtyAir {
		risk *= 1.5
	}
	if v.TyreWear > 70 {
		risk *= 1 + (v.TyreWear-70)/30*2
	}
	if wrongCompoundForWeather(v.TyreCompound, state.RainIntensityLevel) {
		risk *= 10
	}
	if state.RainIntensityLevel > 5 && !wrongCompoundForWeather(v.TyreCompound, state.RainIntensityLevel) {
		risk *= 2
	}
	if d.Skill.Consistency < 50 {
		risk *= 1 + (50-d.Skill.Consistency)/50*3
	}
	if d.Personality.StressResistance < 50 && v.Stress > 50 {
		risk *= 1 + (50-d.Personality.StressResistance)/50*2
	}
	risk *= 1 + track.TrackDifficulty*0.5

	if !r.Chance(risk) {
		return false
	}

	sector := track.SectorAt(v.DistanceOnLap)
	severity := severityScore(r, v.Speed, sector)
	s.applyIncident(r, state, v, severity)
	return true
}

func wrongCompoundForWeather(compound tyres.Compound, rainIntensity float64) bool {
	isSlick := compound == tyres.Soft || compound == tyres.Medium || compound == tyres.Hard
	isRainTyre := compound == tyres.Intermediate || compound == tyres.Wet
	if isSlick && rainIntensity > 10 {
		return true
	}
	if isRainTyre && rainIntensity < 10 {
		return true
	}
	return false
}

func severityScore(r *rng.Source, speed float64, sector *trackmodel.Sector) float64 {
	base := speed / 1.5
	switch sector.Type {
	case trackmodel.SectorCornerLowSpeed:
		base *= 1.3
	case trackmodel.SectorCornerHighSpeed:
		base *= 1.15
	}
	return base + r.Range(0, 30)
}

func (s *System) applyIncident(r *rng.Source, state *racestate.RaceState, v *racestate.VehicleState, severity float64) {
	switch {
	case severity > 80:
		v.Damage = 100
		v.HasFinished = false
		state.SafetyCar = racestate.SafetyCarRedFlag
		state.SetSafetyCarTimer(r.Range(15, 45))
		state.RecordDiagnostic("incident", v.DriverID, "red flag: severe incident")
	case severity > 50:
		state.SafetyCar = racestate.SafetyCarSC
		state.SetSafetyCarTimer(r.Range(180, 400))
		if r.Chance(0.7) {
			v.Damage = 100
		} else {
			v.Damage = tyres.Clamp(v.Damage+r.Range(30, 60), 0, 100)
		}
		state.RecordDiagnostic("incident", v.DriverID, "safety car deployed")
	default:
		state.SafetyCar = racestate.SafetyCarVSC
		state.SetSafetyCarTimer(r.Range(45, 120))
		v.Damage = tyres.Clamp(v.Damage+r.Range(5, 20), 0, 100)
		v.Speed *= 0.3
		state.RecordDiagnostic("incident", v.DriverID, "virtual safety car deployed")
	}
}

// redFlagRestart re-grids surviving vehicles by current position, just
// before the finish line, unlaps the field to the leader's lap count, and
// resets speed and transient race flags (§4.6).
func (s *System) redFlagRestart(track *trackmodel.Track, state *racestate.RaceState) {
	active := state.ActiveVehicles()
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })

	leaderLap := 0
	if len(active) > 0 {
		leaderLap = active[0].LapCount
	}

	for i, v := range active {
		v.LapCount = leaderLap
		v.DistanceOnLap = track.TotalDistance - float64(i+1)*gridSpacingM
		v.Speed = 0
		v.GapToAhead = -1
		v.GapToLeader = -1
		v.IsBattling = false
		v.InDirtyAir = false
		v.BlueFlag = false
		v.DRSOpen = false
	}
}
