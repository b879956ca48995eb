// Package racestate is the mutable data model every subsystem reads and
// (in its own phase) writes: one RaceState per race, one VehicleState per
// driver. Ownership is split by field group exactly as §3 describes —
// weather fields belong to the weather system, race flags and positions to
// race logic, kinematics and resources to physics — so the type system at
// least documents, even if it cannot fully enforce, which phase is allowed
// to touch what.
package racestate

import (
	"github.com/psybe/pitwall/tyres"
)

// ERSMode is the energy-recovery-system deployment strategy.
type ERSMode string

const (
	ERSHarvest  ERSMode = "harvest"
	ERSBalanced ERSMode = "balanced"
	ERSDeploy   ERSMode = "deploy"
)

// TelemetryPoint is one sample of the per-lap speed trace.
type TelemetryPoint struct {
	Distance float64
	Speed    float64
}

// StrategyStint is one planned (or completed) stretch on a compound.
type StrategyStint struct {
	Compound tyres.Compound
	StartLap int
	EndLap   int
	PaceMode *tyres.PaceMode // nil means "inherit the vehicle's current pace mode"
}

// VehicleState is the full per-tick mutable state of one car (§3).
type VehicleState struct {
	DriverID string

	// Kinematic — owned by physics.
	DistanceOnLap  float64 // [0, TotalDistance), may be negative pre-start
	TotalDistance  float64 // odometer, monotone non-decreasing
	Speed          float64 // m/s, >= 0
	LapCount       int
	CurrentSector  int // 1-indexed
	CurrentLapTime float64
	LastLapTime    float64
	BestLapTime    float64

	// Race — owned by race logic (except BoxThisLap, set by strategy).
	Position     int
	LastPosition int
	GapToLeader  float64 // seconds
	GapToAhead   float64 // seconds
	IsInPit      bool
	PitStopCount int
	BoxThisLap   bool

	// Consumables — owned by physics, compound choice owned by strategy.
	TyreCompound tyres.Compound
	TyreWear     float64 // [0,100]
	TyreAgeLaps  int
	FuelLoad     float64 // kg, [0,100]
	ERSLevel     float64 // [0,100]
	ERSMode      ERSMode
	PaceMode     tyres.PaceMode

	// Dynamic — Condition fixed at init; the rest owned by race logic
	// (morale/concentration/flags, and incident damage, which race logic
	// applies and clamps to [0,100]) or physics.
	Condition     float64 // [0.99, 1.01], fixed at init
	Damage        float64 // [0,100]
	Stress        float64
	Morale        float64
	Concentration float64
	DRSOpen       bool
	InDirtyAir    bool
	IsBattling    bool
	BlueFlag      bool
	HasFinished   bool

	// Plan — owned by strategy.
	Plan         []StrategyStint
	CurrentStint int

	// Telemetry — appended by physics, swapped at lap rollover.
	CurrentLapTrace []TelemetryPoint
	LastLapTrace    []TelemetryPoint
	lastSampledAt   float64

	// PitStage tracks progress through the pit-lane state machine (§4.6);
	// zero value PitStageNone means "not currently in the pit machine".
	PitStage       PitStage
	pitStageTimer  float64
	pitLaneTimeS   float64

	// spatialBehindGap is the physical time-gap to the car behind,
	// computed by the spatial-awareness pass and consumed one step later
	// by morale/concentration drift; it carries no spec-visible name of
	// its own because §3 never names a gapToBehind field.
	spatialBehindGap float64
}

// PitStage is the pit-stop state-machine phase.
type PitStage int

const (
	PitStageNone PitStage = iota
	PitStageDrivingIn
	PitStageStopped
	PitStageDrivingOut
	PitStageReleased
)

// LastSampledAt exposes the private telemetry-sampling cursor to physics
// without letting other packages see it as a general-purpose field.
func (v *VehicleState) LastSampledAt() float64     { return v.lastSampledAt }
func (v *VehicleState) SetLastSampledAt(d float64) { v.lastSampledAt = d }

// PitStageTimer and PitLaneTimeS are exposed the same way for the pit
// state machine in racelogic.
func (v *VehicleState) PitStageTimer() float64      { return v.pitStageTimer }
func (v *VehicleState) SetPitStageTimer(s float64)  { v.pitStageTimer = s }
func (v *VehicleState) PitLaneTimeS() float64       { return v.pitLaneTimeS }
func (v *VehicleState) SetPitLaneTimeS(s float64)   { v.pitLaneTimeS = s }

// SpatialBehindGap and its setter expose the spatial-awareness pass's
// behind-gap measurement to the morale/concentration pass.
func (v *VehicleState) SpatialBehindGap() float64     { return v.spatialBehindGap }
func (v *VehicleState) SetSpatialBehindGap(s float64) { v.spatialBehindGap = s }

// IsActive reports whether the vehicle is still a classified runner (§3:
// DNF is damage==100).
func (v *VehicleState) IsActive() bool {
	return v.Damage < 100
}

// RaceDistance is the unwrapped odometer-style distance used for gap math:
// lapCount*totalDistance + distanceOnLap.
func (v *VehicleState) RaceDistance(totalDistance float64) float64 {
	return float64(v.LapCount)*totalDistance + v.DistanceOnLap
}
