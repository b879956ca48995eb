package physics

import (
	"math"
	"testing"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

func straightTrack() *trackmodel.Track {
	return &trackmodel.Track{
		ID:                    "t",
		TotalDistance:         5000,
		TireDegradationFactor: 1.0,
		TrackDifficulty:       0.3,
		BaseTemperature:       22,
		Sectors: []trackmodel.Sector{
			{ID: 1, StartDistance: 0, EndDistance: 5000, Type: trackmodel.SectorStraight},
		},
		PitLane: trackmodel.PitLane{EntryDistance: 4500, ExitDistance: 100, SpeedLimit: 22, StopTime: 2.4},
	}
}

func testDriver() *trackmodel.Driver {
	return &trackmodel.Driver{
		ID: "d1", BasePace: 88,
		Skill:       trackmodel.SkillScores{Racecraft: 80, Consistency: 80, TyreManagement: 80, WetWeather: 70},
		Performance: trackmodel.PerformanceScores{Straight: 85, CorneringHigh: 80, CorneringMedium: 80, CorneringLow: 80, TemperatureAdaptability: 75},
		Personality: trackmodel.PersonalityScores{Aggression: 50, StressResistance: 70, TeamPlayer: 50},
	}
}

func testVehicle() *racestate.VehicleState {
	return &racestate.VehicleState{
		DriverID: "d1", Speed: 50, TyreCompound: tyres.Medium, FuelLoad: 80,
		Condition: 1.0, Morale: 80, PaceMode: tyres.Balanced, ERSMode: racestate.ERSBalanced,
		GapToAhead: -1,
	}
}

func testState() *racestate.RaceState {
	return &racestate.RaceState{
		TrackTemp:        25,
		SectorConditions: []racestate.SectorCondition{{WaterDepth: 0, RubberLevel: 50}},
	}
}

func TestSpeedNeverNegativeOrNaN(t *testing.T) {
	s := New()
	track := straightTrack()
	d := testDriver()
	v := testVehicle()
	state := testState()
	r := rng.New(1)

	for i := 0; i < 2000; i++ {
		s.Update(r, track, state, d, v, Neighbors{IsLeader: true}, 0.1)
		if math.IsNaN(v.Speed) || v.Speed < 0 || v.Speed > maxSpeedMS {
			t.Fatalf("speed out of bounds at tick %d: %v", i, v.Speed)
		}
	}
}

func TestRedFlagForcesZeroTarget(t *testing.T) {
	s := New()
	track := straightTrack()
	d := testDriver()
	v := testVehicle()
	v.Speed = 40
	state := testState()
	state.SafetyCar = racestate.SafetyCarRedFlag
	r := rng.New(2)

	for i := 0; i < 200; i++ {
		s.Update(r, track, state, d, v, Neighbors{IsLeader: true}, 0.1)
	}
	if v.Speed > 1 {
		t.Fatalf("expected speed to decay to ~0 under red flag, got %v", v.Speed)
	}
}

func TestTyreWearMonotoneDuringStint(t *testing.T) {
	s := New()
	track := straightTrack()
	v := testVehicle()
	v.PaceMode = tyres.Aggressive

	prev := v.TyreWear
	for i := 0; i < 500; i++ {
		s.consumeResources(track, v, 0.1)
		if v.TyreWear < prev {
			t.Fatalf("tyre wear decreased mid-stint at tick %d: %v < %v", i, v.TyreWear, prev)
		}
		prev = v.TyreWear
	}
	if prev == 0 {
		t.Fatal("expected tyre wear to have increased over the stint")
	}
}

func TestFuelAndERSClampedToRange(t *testing.T) {
	s := New()
	track := straightTrack()
	v := testVehicle()
	v.FuelLoad = 0.01
	v.ERSLevel = 99.99
	v.ERSMode = racestate.ERSDeploy

	for i := 0; i < 1000; i++ {
		s.consumeResources(track, v, 0.1)
	}
	if v.FuelLoad < 0 {
		t.Fatalf("fuel went negative: %v", v.FuelLoad)
	}
	if v.ERSLevel < 0 {
		t.Fatalf("ERS went negative: %v", v.ERSLevel)
	}
	if v.ERSLevel <= 0 && v.ERSMode != racestate.ERSBalanced {
		t.Fatal("ERS mode should force to balanced once depleted")
	}
}

func TestLapRolloverResetsTelemetryAndIncrementsAge(t *testing.T) {
	s := New()
	track := straightTrack()
	state := testState()
	v := testVehicle()
	v.DistanceOnLap = 4990
	v.Speed = 100
	v.TyreAgeLaps = 2
	v.CurrentLapTrace = []racestate.TelemetryPoint{{Distance: 4900, Speed: 100}}
	v.SetLastSampledAt(4900)

	s.integrateMotion(track, state, v, 0.2)

	if len(v.CurrentLapTrace) != 0 || v.LastSampledAt() != 0 {
		t.Fatalf("expected the current-lap trace to reset on rollover, got %d points, last sampled at %v", len(v.CurrentLapTrace), v.LastSampledAt())
	}
	if len(v.LastLapTrace) != 1 {
		t.Fatalf("expected the finished lap's trace to move to LastLapTrace, got %d points", len(v.LastLapTrace))
	}

	if v.LapCount != 1 {
		t.Fatalf("expected lap count to increment, got %d", v.LapCount)
	}
	if v.TyreAgeLaps != 3 {
		t.Fatalf("expected tyre age to increment on rollover, got %d", v.TyreAgeLaps)
	}
	if v.DistanceOnLap < 0 || v.DistanceOnLap >= track.TotalDistance {
		t.Fatalf("distanceOnLap out of range after rollover: %v", v.DistanceOnLap)
	}
}

func TestPitIntentTriggersWithinEntryWindow(t *testing.T) {
	s := New()
	track := straightTrack()
	v := testVehicle()
	v.BoxThisLap = true
	v.DistanceOnLap = track.PitLane.EntryDistance + 10

	s.checkPitIntent(track, v)

	if !v.IsInPit {
		t.Fatal("expected vehicle to enter the pit lane within the entry window")
	}
}

func TestPitIntentIgnoredOutsideWindow(t *testing.T) {
	s := New()
	track := straightTrack()
	v := testVehicle()
	v.BoxThisLap = true
	v.DistanceOnLap = track.PitLane.EntryDistance - 200

	s.checkPitIntent(track, v)

	if v.IsInPit {
		t.Fatal("vehicle should not enter the pit lane before reaching the entry window")
	}
}

func TestSafetyCarVSCCapsSpeed(t *testing.T) {
	s := New()
	state := testState()
	state.SafetyCar = racestate.SafetyCarVSC
	v := testVehicle()
	capped := s.safetyCarCap(state, v, 100)
	if capped > 44 {
		t.Fatalf("VSC cap should limit speed to <=44, got %v", capped)
	}
}
