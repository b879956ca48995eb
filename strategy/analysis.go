package strategy

import (
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

// PitLossEstimate is the read-only pit-stop cost query from the
// supplemented features: how much time a stop costs right now, absent any
// traffic, computed from the track's own pit-lane geometry rather than a
// fixed constant.
type PitLossEstimate struct {
	LaneTimeSeconds    float64
	StationaryEstimate float64
	TotalSeconds       float64
}

// EstimatePitLoss reports the time a pit stop would cost a car at full
// pace right now: the lane transit time plus a representative stationary
// duration (the 2.0-2.8s base window from §4.6's state machine, without
// its rare long-stop tail).
func EstimatePitLoss(track *trackmodel.Track) PitLossEstimate {
	lane := laneTimeEstimate(track)
	const stationary = 2.4 // midpoint of the 2.0-2.8s base window
	return PitLossEstimate{
		LaneTimeSeconds:    lane,
		StationaryEstimate: stationary,
		TotalSeconds:       lane + stationary,
	}
}

func laneTimeEstimate(track *trackmodel.Track) float64 {
	if track.PitLane.StopTime > 0 {
		return track.PitLane.StopTime
	}
	pathLen := trackmodel.Mod(track.PitLane.ExitDistance-track.PitLane.EntryDistance, track.TotalDistance)
	if track.PitLane.SpeedLimit <= 0 {
		return minLaneTimeEstimate
	}
	lt := pathLen / track.PitLane.SpeedLimit
	if lt < minLaneTimeEstimate {
		return minLaneTimeEstimate
	}
	return lt
}

const minLaneTimeEstimate = 5.0

const minGapSpeed = 20.0

// gapSeconds is the same raceDistance-based time-gap formula racelogic
// uses for GapToAhead/GapToLeader (§4.6), reimplemented here since it is a
// pure function of two vehicles and the track length, not race-state
// mutation, and strategy has no dependency on racelogic.
func gapSeconds(ahead, v *racestate.VehicleState, totalDistance float64) float64 {
	denom := v.Speed
	if denom < minGapSpeed {
		denom = minGapSpeed
	}
	return (ahead.RaceDistance(totalDistance) - v.RaceDistance(totalDistance)) / denom
}

// UndercutThreat describes one car behind the queried vehicle that is
// within undercut range: close enough on gap that pitting first would
// plausibly jump it ahead once both have stopped. Tyre age is reported but
// not used to select threats.
type UndercutThreat struct {
	DriverID      string
	GapSeconds    float64
	TyreAgeDelta  int // positive: we are on older tyres than the threat
}

// UndercutAnalysis reports which cars behind v are live undercut threats:
// within one pit-loss window of gap, so a stop now plus a fast out-lap
// could have them emerge ahead.
func UndercutAnalysis(track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState) []UndercutThreat {
	loss := EstimatePitLoss(track).TotalSeconds
	var threats []UndercutThreat
	for i := range state.Vehicles {
		other := &state.Vehicles[i]
		if other.DriverID == v.DriverID || !other.IsActive() || other.Position <= v.Position {
			continue
		}
		gap := gapSeconds(v, other, track.TotalDistance)
		if gap <= loss {
			threats = append(threats, UndercutThreat{
				DriverID:     other.DriverID,
				GapSeconds:   gap,
				TyreAgeDelta: v.TyreAgeLaps - other.TyreAgeLaps,
			})
		}
	}
	return threats
}

// OvercutTarget describes a car ahead of v that is vulnerable to an
// overcut: v stays out past its own planned stop while the target's tyres
// keep degrading, hoping to leapfrog it once the target eventually pits.
type OvercutTarget struct {
	DriverID     string
	GapSeconds   float64
	WearDelta    float64 // positive: the target is more worn than us
}

// OvercutAnalysis reports cars ahead of v whose tyre wear already exceeds
// v's by a margin large enough that an extended stint is likely to close
// the gap before the target's own stop.
func OvercutAnalysis(track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState) []OvercutTarget {
	const wearMarginThreshold = 10.0
	var targets []OvercutTarget
	for i := range state.Vehicles {
		other := &state.Vehicles[i]
		if other.DriverID == v.DriverID || !other.IsActive() || other.Position >= v.Position {
			continue
		}
		wearDelta := other.TyreWear - v.TyreWear
		if wearDelta >= wearMarginThreshold {
			targets = append(targets, OvercutTarget{
				DriverID:   other.DriverID,
				GapSeconds: gapSeconds(other, v, track.TotalDistance),
				WearDelta:  wearDelta,
			})
		}
	}
	return targets
}

// RecommendedCompound is a pure read-only echo of §4.5's release-compound
// rule, exposed so an external dashboard can preview what a driver would
// receive if boxed right now without mutating any state.
func RecommendedCompound(rainIntensity float64, v *racestate.VehicleState, lapsRemaining int) tyres.Compound {
	return ChooseReleaseCompound(rainIntensity, v, lapsRemaining)
}
