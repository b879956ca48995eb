package racelogic

import (
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/strategy"
	"github.com/psybe/pitwall/trackmodel"
)

const minLaneTimeS = 5.0

// RunPitMachine advances every vehicle currently in the pit lane through
// the driving_in -> stopped -> driving_out -> released state machine
// (§4.6). Vehicles not in the pit lane are untouched; physics is
// responsible for flipping IsInPit on as a vehicle crosses the entry
// window.
func (s *System) RunPitMachine(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, dt float64) {
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if !v.IsInPit {
			continue
		}
		if v.PitStage == racestate.PitStageNone {
			s.enterPitMachine(track, v)
		}
		s.advancePitStage(r, track, state, v, dt)
	}
}

func laneTime(track *trackmodel.Track) float64 {
	lt := track.PitLane.StopTime
	if lt <= 0 {
		pathLen := trackmodel.Mod(track.PitLane.ExitDistance-track.PitLane.EntryDistance, track.TotalDistance)
		if track.PitLane.SpeedLimit > 0 {
			lt = pathLen / track.PitLane.SpeedLimit
		}
	}
	if lt < minLaneTimeS {
		lt = minLaneTimeS
	}
	return lt
}

func (s *System) enterPitMachine(track *trackmodel.Track, v *racestate.VehicleState) {
	v.PitStage = racestate.PitStageDrivingIn
	v.SetPitLaneTimeS(laneTime(track))
	v.SetPitStageTimer(v.PitLaneTimeS() / 2)
}

func (s *System) advancePitStage(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState, dt float64) {
	switch v.PitStage {
	case racestate.PitStageDrivingIn:
		v.Speed = track.PitLane.SpeedLimit
		s.advancePitMotion(track, v, dt)
		if s.tickPitTimer(v, dt) {
			v.PitStage = racestate.PitStageStopped
			v.SetPitStageTimer(stoppedDuration(r, v))
		}
	case racestate.PitStageStopped:
		v.Speed = 0
		if s.tickPitTimer(v, dt) {
			v.PitStage = racestate.PitStageDrivingOut
			v.SetPitStageTimer(v.PitLaneTimeS() / 2)
		}
	case racestate.PitStageDrivingOut:
		v.Speed = track.PitLane.SpeedLimit
		s.advancePitMotion(track, v, dt)
		if s.tickPitTimer(v, dt) {
			v.PitStage = racestate.PitStageReleased
		}
	case racestate.PitStageReleased:
		s.releaseFromPit(track, state, v)
	}
}

// tickPitTimer decrements the stage timer and reports whether it has
// expired this tick.
func (s *System) tickPitTimer(v *racestate.VehicleState, dt float64) bool {
	t := v.PitStageTimer() - dt
	v.SetPitStageTimer(t)
	return t <= 0
}

func stoppedDuration(r *rng.Source, v *racestate.VehicleState) float64 {
	base := r.Range(2.0, 2.8)
	if r.Chance(0.01) {
		base = r.Range(4, 10)
	}
	if v.Damage > 10 {
		base += 10
	}
	return base
}

// advancePitMotion moves distanceOnLap/odometer along the track path while
// the vehicle is driving through the lane, wrapping the lap counter at the
// finish line exactly as normal racing motion does, so the vehicle renders
// continuously through its stop.
func (s *System) advancePitMotion(track *trackmodel.Track, v *racestate.VehicleState, dt float64) {
	delta := v.Speed * dt
	v.DistanceOnLap += delta
	v.TotalDistance += delta
	if v.DistanceOnLap >= track.TotalDistance {
		v.DistanceOnLap -= track.TotalDistance
		v.LapCount++
	}
}

// releaseFromPit finalizes the stop: snaps to the pit exit, clears the
// in-pit flags, resets tyre age/wear and damage, and picks the next
// compound and stint (§4.6, compound choice delegated to §4.5).
func (s *System) releaseFromPit(track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState) {
	v.DistanceOnLap = track.PitLane.ExitDistance
	v.IsInPit = false
	v.BoxThisLap = false
	v.PitStopCount++
	v.TyreWear = 0
	v.TyreAgeLaps = 0
	v.Damage = 0
	v.PitStage = racestate.PitStageNone
	v.SetPitStageTimer(0)

	lapsRemaining := state.TotalLaps - state.CurrentLap
	if v.CurrentStint+1 >= len(v.Plan) && state.RainIntensityLevel <= 60 {
		state.RecordDiagnostic(strategy.ErrorKindPlanExhausted.String(), v.DriverID, "no planned stint remains, falling back to laps-remaining compound rule")
	}
	v.TyreCompound = strategy.ChooseReleaseCompound(state.RainIntensityLevel, v, lapsRemaining)
	if v.CurrentStint+1 < len(v.Plan) {
		v.CurrentStint++
	}
}
