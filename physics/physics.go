// Package physics implements §4.4: the per-vehicle target-speed model,
// longitudinal dynamics, motion integration, telemetry sampling and
// resource consumption. It runs once per non-pit vehicle per tick, after
// race logic has updated positions, gaps, dirty-air and battling flags for
// that same tick.
package physics

import (
	"math"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

const (
	enginePowerW  = 750_000.0
	vehicleMassKg = 800.0
	gravity       = 9.81
	tractionMult  = 1.3
	airDensity    = 1.225
	dragCdA       = 1.6
	mechBrakeMS2  = 15.0
	aeroBrakeCoef = 0.005
	rollResist    = 0.1

	maxSpeedMS = 150.0
	pitEntryWindowM = 50.0
)

// System carries no per-race state; every input it needs is passed in
// explicitly, which keeps it trivially testable per vehicle in isolation.
type System struct{}

// New returns a ready-to-use physics System.
func New() *System { return &System{} }

// Neighbors is the minimal view of the rest of the field physics needs for
// slipstream/dirty-air/battling (the speed of the car one place ahead in the
// running order, and whether this vehicle is the race leader). The engine
// builds this once per tick from the leaderboard positions and hands it to
// physics.
type Neighbors struct {
	AheadSpeed float64
	IsLeader   bool
}

// Update advances one non-pit vehicle by dt seconds: target speed, engine/
// brake dynamics, motion integration, sector/telemetry bookkeeping, and
// resource burn. It assumes race logic has already updated v.GapToAhead,
// v.InDirtyAir, v.IsBattling, v.DRSOpen and v.BlueFlag for this tick.
func (s *System) Update(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, d *trackmodel.Driver, v *racestate.VehicleState, neighbors Neighbors, dt float64) {
	sector := track.SectorAt(v.DistanceOnLap)
	v.CurrentSector = sector.ID

	target := s.targetSpeed(r, track, state, d, v, sector, neighbors)
	s.integrateSpeed(track, state, v, sector, target, dt)

	s.integrateMotion(track, state, v, dt)
	s.sampleTelemetry(v)
	s.consumeResources(track, v, dt)
	s.checkPitIntent(track, v)
}

// targetSpeed assembles the multiplicative factor chain from §4.4.
func (s *System) targetSpeed(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, d *trackmodel.Driver, v *racestate.VehicleState, sector *trackmodel.Sector, n Neighbors) float64 {
	if state.SafetyCar == racestate.SafetyCarRedFlag {
		return 0
	}

	base := baseSpeedFor(sector)
	speed := base

	speed *= sectorPerformanceFactor(d, sector)
	speed *= 1 + (88.0-d.BasePace)*0.0008
	speed *= 1 + (v.Morale-80)*0.0005
	speed *= v.Condition
	speed *= temperaturePenaltyFactor(track, state, d)
	speed *= 1 - track.TrackDifficulty*0.08*(1-d.Skill.Consistency/100)

	waterDepth := 0.0
	if v.CurrentSector-1 >= 0 && v.CurrentSector-1 < len(state.SectorConditions) {
		waterDepth = state.SectorConditions[v.CurrentSector-1].WaterDepth
	}
	speed *= tyres.GripFactor(v.TyreCompound, v.TyreWear, waterDepth)

	speed *= 1 - (v.FuelLoad/100)*0.033

	switch v.PaceMode {
	case tyres.Aggressive:
		speed *= 1.015
	case tyres.Conservative:
		speed *= 0.985
	}
	switch v.ERSMode {
	case racestate.ERSDeploy:
		speed *= 1.02
	case racestate.ERSHarvest:
		speed *= 0.98
	}

	if v.DRSOpen {
		speed *= 1.05
	}

	speed *= aeroWakeFactor(state, v, n, sector)
	speed = s.battlingBlend(d, v, n, speed)

	if v.BlueFlag {
		compliance := (d.Personality.TeamPlayer + (100 - d.Personality.Aggression)) / 200
		speed *= 1 - 0.2*compliance
	}

	speed *= s.noiseFactor(r, d, sector, state)

	speed = s.safetyCarCap(state, v, speed)

	return speed
}

func baseSpeedFor(sector *trackmodel.Sector) float64 {
	if sector.MaxSpeed > 0 {
		return sector.MaxSpeed
	}
	switch sector.Type {
	case trackmodel.SectorStraight:
		return 105
	case trackmodel.SectorCornerHighSpeed:
		return 72
	case trackmodel.SectorCornerMediumSpeed:
		return 50
	case trackmodel.SectorCornerLowSpeed:
		return 25
	default:
		return 50
	}
}

func sectorPerformanceFactor(d *trackmodel.Driver, sector *trackmodel.Sector) float64 {
	var perf float64
	switch sector.Type {
	case trackmodel.SectorStraight:
		perf = d.Performance.Straight
	case trackmodel.SectorCornerHighSpeed:
		perf = d.Performance.CorneringHigh
	case trackmodel.SectorCornerMediumSpeed:
		perf = d.Performance.CorneringMedium
	case trackmodel.SectorCornerLowSpeed:
		perf = d.Performance.CorneringLow
	}
	return 1 + (perf-90)*0.0005
}

func temperaturePenaltyFactor(track *trackmodel.Track, state *racestate.RaceState, d *trackmodel.Driver) float64 {
	trackTemp := state.TrackTemp
	if trackTemp == 0 {
		trackTemp = track.BaseTemperature - state.RainIntensityLevel*0.15
	}
	penalty := math.Abs(trackTemp-25) * 0.005 * (1 - d.Performance.TemperatureAdaptability/100)
	return 1 - penalty
}

// aeroWakeFactor applies slipstream on straights and dirty air in corners,
// only from lap 2 on and never to the leader.
func aeroWakeFactor(state *racestate.RaceState, v *racestate.VehicleState, n Neighbors, sector *trackmodel.Sector) float64 {
	if v.LapCount <= 1 || n.IsLeader {
		return 1
	}
	gap := v.GapToAhead

	if sector.Type == trackmodel.SectorStraight {
		if gap >= 1.5 || gap < 0 {
			return 1
		}
		boost := 0.05 * (1 - gap/1.5)
		return 1 + boost
	}

	if !v.InDirtyAir || gap >= 2 || gap < 0 {
		return 1
	}
	var penalty float64
	switch sector.Type {
	case trackmodel.SectorCornerHighSpeed:
		penalty = 0.05
	case trackmodel.SectorCornerMediumSpeed:
		penalty = 0.03
	case trackmodel.SectorCornerLowSpeed:
		penalty = 0.01
	}
	return 1 - penalty*(1-gap/2)
}

// battlingBlend implements §4.4.13: a sigmoid blend between "stuck behind"
// and "free" speed, driven by pace delta, aggression and racecraft.
func (s *System) battlingBlend(d *trackmodel.Driver, v *racestate.VehicleState, n Neighbors, freeTarget float64) float64 {
	if !v.IsBattling {
		return freeTarget
	}

	stuckSpeed := n.AheadSpeed * 0.98

	offlinePenalty := 1.0
	intensity := 0.5
	freeSpeed := freeTarget * (1 - 0.05*intensity*offlinePenalty)

	paceDelta := n.AheadSpeed - v.Speed
	aggression := d.Personality.Aggression / 100
	racecraft := d.Skill.Racecraft / 100
	x := paceDelta + 2.5*aggression + 1.5*racecraft - 3.0
	w := sigmoid(x)

	return stuckSpeed*(1-w) + freeSpeed*w
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func (s *System) noiseFactor(r *rng.Source, d *trackmodel.Driver, sector *trackmodel.Sector, state *racestate.RaceState) float64 {
	amplitude := 0.05 * (1 - d.Skill.Consistency/100 + 0.3)
	if sector.Type == trackmodel.SectorCornerLowSpeed {
		amplitude *= 3
	}
	if state.SafetyCar == racestate.SafetyCarSC || state.SafetyCar == racestate.SafetyCarVSC {
		amplitude *= 0.1
	}
	return 1 + r.Range(-amplitude, amplitude)
}

func (s *System) safetyCarCap(state *racestate.RaceState, v *racestate.VehicleState, speed float64) float64 {
	switch state.SafetyCar {
	case racestate.SafetyCarVSC:
		return math.Min(speed*0.7, 44)
	case racestate.SafetyCarSC:
		gap := v.GapToAhead
		pace := 35.0
		switch {
		case gap >= 0 && gap < 0.3:
			return pace * 0.8
		case gap > 0.5:
			return pace * 1.6
		default:
			return pace
		}
	default:
		return speed
	}
}

// integrateSpeed applies the longitudinal dynamics model (§4.4) to move
// v.Speed toward target over dt, then clamps for numerical anomalies.
func (s *System) integrateSpeed(track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState, sector *trackmodel.Sector, target float64, dt float64) {
	waterDepth := 0.0
	if v.CurrentSector-1 >= 0 && v.CurrentSector-1 < len(state.SectorConditions) {
		waterDepth = state.SectorConditions[v.CurrentSector-1].WaterDepth
	}
	grip := tyres.GripFactor(v.TyreCompound, v.TyreWear, waterDepth)

	speed := v.Speed
	accelSpeed := speed
	if accelSpeed < 10 {
		accelSpeed = 10
	}

	maxAccel := enginePowerW / (vehicleMassKg * accelSpeed)
	tractionLimit := gravity * tractionMult
	if maxAccel > tractionLimit {
		maxAccel = tractionLimit
	}

	drag := 0.5 * airDensity * dragCdA * speed * speed
	dragReduction := 1.0
	if v.DRSOpen {
		dragReduction = 0.75
	}
	if v.GapToAhead >= 0 && v.GapToAhead < 1 && sector.Type == trackmodel.SectorStraight {
		slipReduction := 0.15
		if v.DRSOpen {
			slipReduction = 0.08
		}
		dragReduction *= 1 - slipReduction
	}
	drag *= dragReduction

	accel := maxAccel*grip - drag/vehicleMassKg - rollResist

	maxBrake := (mechBrakeMS2 + aeroBrakeCoef*speed*speed) * grip

	if speed < target {
		speed += accel * dt
		if speed > target {
			speed = target
		}
	} else {
		speed -= maxBrake * dt
		if speed < target {
			speed = target
		}
	}

	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 0
	}
	speed = tyres.Clamp(speed, 0, maxSpeedMS)

	v.Speed = speed
}

// integrateMotion advances distanceOnLap/odometer and handles lap rollover.
func (s *System) integrateMotion(track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState, dt float64) {
	if v.IsInPit {
		return
	}

	v.DistanceOnLap += v.Speed * dt
	v.TotalDistance += v.Speed * dt
	v.CurrentLapTime += dt

	if v.DistanceOnLap >= track.TotalDistance {
		v.DistanceOnLap -= track.TotalDistance
		v.LapCount++
		v.LastLapTime = v.CurrentLapTime
		if v.BestLapTime == 0 || v.LastLapTime < v.BestLapTime {
			v.BestLapTime = v.LastLapTime
		}
		v.CurrentLapTime = 0
		v.TyreAgeLaps++
		v.LastLapTrace = v.CurrentLapTrace
		v.CurrentLapTrace = nil
		v.SetLastSampledAt(0)

		if state.CheckeredFlag {
			v.HasFinished = true
		}
	}
}

func (s *System) sampleTelemetry(v *racestate.VehicleState) {
	if v.DistanceOnLap-v.LastSampledAt() > 50 {
		v.CurrentLapTrace = append(v.CurrentLapTrace, racestate.TelemetryPoint{Distance: v.DistanceOnLap, Speed: v.Speed})
		v.SetLastSampledAt(v.DistanceOnLap)
	}
}

// consumeResources burns tyre wear, fuel and ERS for this tick.
func (s *System) consumeResources(track *trackmodel.Track, v *racestate.VehicleState, dt float64) {
	if v.IsInPit {
		return
	}

	wearPerLap := tyres.WearRate(v.TyreCompound, track.TireDegradationFactor, v.PaceMode, v.TyreWear)
	lapFraction := v.Speed * dt / track.TotalDistance
	v.TyreWear = tyres.Clamp(v.TyreWear+wearPerLap*lapFraction, 0, 100)

	paceFactor := 1.0
	switch v.PaceMode {
	case tyres.Aggressive:
		paceFactor = 1.15
	case tyres.Conservative:
		paceFactor = 0.88
	}
	v.FuelLoad = tyres.Clamp(v.FuelLoad-0.016*paceFactor*dt, 0, 100)

	switch v.ERSMode {
	case racestate.ERSDeploy:
		v.ERSLevel -= 2.0 * dt
	case racestate.ERSHarvest:
		v.ERSLevel += 1.5 * dt
	default:
		v.ERSLevel += 0.1 * dt
	}
	v.ERSLevel = tyres.Clamp(v.ERSLevel, 0, 100)
	if v.ERSLevel <= 0 {
		v.ERSMode = racestate.ERSBalanced
	}
}

// checkPitIntent transitions a vehicle into the pit lane once it crosses
// the entry window with boxThisLap set; from the next tick the pit-stop
// state machine (racelogic) takes over its movement.
func (s *System) checkPitIntent(track *trackmodel.Track, v *racestate.VehicleState) {
	if !v.BoxThisLap || v.IsInPit {
		return
	}
	entry := track.PitLane.EntryDistance
	if v.DistanceOnLap >= entry && v.DistanceOnLap <= entry+pitEntryWindowM {
		v.IsInPit = true
	}
}
