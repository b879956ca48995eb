package strategy

import (
	"testing"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

func testTrack() *trackmodel.Track {
	return &trackmodel.Track{
		ID:                    "test-track",
		TotalDistance:         5000,
		DefaultTotalLaps:      50,
		TireDegradationFactor: 1.0,
		WeatherParams:         trackmodel.WeatherParams{RainProbability: 0.1},
		PitLane:               trackmodel.PitLane{EntryDistance: 4800, ExitDistance: 100, SpeedLimit: 20},
	}
}

func testDriver() *trackmodel.Driver {
	return &trackmodel.Driver{
		ID:       "d1",
		BasePace: 90,
		Skill:    trackmodel.SkillScores{TyreManagement: 50},
		Personality: trackmodel.PersonalityScores{
			Aggression: 50,
		},
	}
}

func TestPlanPreRaceWetWeather(t *testing.T) {
	e := NewEngine(nil)
	r := rng.New(1)
	plan := e.PlanPreRace(testTrack(), testDriver(), 50, 0.8, r)
	if len(plan) != 2 {
		t.Fatalf("expected a two-stint wet plan, got %d stints", len(plan))
	}
	if plan[0].Compound != tyres.Wet || plan[1].Compound != tyres.Intermediate {
		t.Fatalf("unexpected wet plan compounds: %+v", plan)
	}
	if plan[len(plan)-1].EndLap != 50 {
		t.Fatalf("plan must cover the full race, got end lap %d", plan[len(plan)-1].EndLap)
	}
}

func TestPlanPreRaceDryIsMonotonic(t *testing.T) {
	e := NewEngine(nil)
	r := rng.New(42)
	plan := e.PlanPreRace(testTrack(), testDriver(), 50, 0.1, r)
	if len(plan) == 0 {
		t.Fatal("expected at least one stint")
	}
	for i := 1; i < len(plan); i++ {
		if plan[i].EndLap <= plan[i-1].EndLap {
			t.Fatalf("stint end laps must be strictly increasing: %+v", plan)
		}
		if plan[i].StartLap <= plan[i-1].EndLap {
			t.Fatalf("stint %d starts before the previous one ends: %+v", i, plan)
		}
	}
	if plan[len(plan)-1].EndLap != 50 {
		t.Fatalf("final stint must end on the last lap, got %d", plan[len(plan)-1].EndLap)
	}
}

func TestChooseReleaseCompoundWeatherOverridesPlan(t *testing.T) {
	v := &racestate.VehicleState{Plan: []racestate.StrategyStint{
		{Compound: tyres.Soft, StartLap: 1, EndLap: 10},
		{Compound: tyres.Hard, StartLap: 11, EndLap: 50},
	}, CurrentStint: 0}

	if got := ChooseReleaseCompound(80, v, 20); got != tyres.Wet {
		t.Fatalf("expected wet tyres in heavy rain, got %v", got)
	}
	if got := ChooseReleaseCompound(30, v, 20); got != tyres.Intermediate {
		t.Fatalf("expected intermediate tyres in light rain, got %v", got)
	}
}

func TestChooseReleaseCompoundFollowsPlan(t *testing.T) {
	v := &racestate.VehicleState{Plan: []racestate.StrategyStint{
		{Compound: tyres.Soft, StartLap: 1, EndLap: 10},
		{Compound: tyres.Hard, StartLap: 11, EndLap: 50},
	}, CurrentStint: 0}

	if got := ChooseReleaseCompound(0, v, 40); got != tyres.Hard {
		t.Fatalf("expected next planned stint's compound, got %v", got)
	}
}

func TestChooseReleaseCompoundFallsBackWhenPlanExhausted(t *testing.T) {
	v := &racestate.VehicleState{Plan: []racestate.StrategyStint{
		{Compound: tyres.Soft, StartLap: 1, EndLap: 50},
	}, CurrentStint: 0}

	if got := ChooseReleaseCompound(0, v, 10); got != tyres.Soft {
		t.Fatalf("expected soft with <15 laps remaining, got %v", got)
	}
	if got := ChooseReleaseCompound(0, v, 20); got != tyres.Medium {
		t.Fatalf("expected medium with <30 laps remaining, got %v", got)
	}
	if got := ChooseReleaseCompound(0, v, 40); got != tyres.Hard {
		t.Fatalf("expected hard with >=30 laps remaining, got %v", got)
	}
}

func TestShouldBoxOnHighDamage(t *testing.T) {
	state := &racestate.RaceState{CurrentLap: 10}
	v := &racestate.VehicleState{Damage: 20, TyreCompound: tyres.Medium, Plan: []racestate.StrategyStint{{EndLap: 30}}}
	if !ShouldBox(rng.New(1), state, v, 50, DefaultConfig()) {
		t.Fatal("expected damage>15 to force a box decision")
	}
}

func TestShouldBoxOnExcessiveWear(t *testing.T) {
	state := &racestate.RaceState{CurrentLap: 10}
	v := &racestate.VehicleState{TyreWear: 90, TyreCompound: tyres.Medium, Plan: []racestate.StrategyStint{{EndLap: 30}}}
	if !ShouldBox(rng.New(1), state, v, 50, DefaultConfig()) {
		t.Fatal("expected tyreWear>85 to force a box decision")
	}
}

func TestShouldBoxOnTyreWeatherMismatch(t *testing.T) {
	state := &racestate.RaceState{CurrentLap: 10, RainIntensityLevel: 50}
	v := &racestate.VehicleState{TyreCompound: tyres.Soft, Plan: []racestate.StrategyStint{{EndLap: 30}}}
	if !ShouldBox(rng.New(1), state, v, 50, DefaultConfig()) {
		t.Fatal("expected slicks in the rain to force a box decision")
	}
}

func TestShouldBoxOutsidePitWindowStaysOut(t *testing.T) {
	state := &racestate.RaceState{CurrentLap: 1}
	v := &racestate.VehicleState{TyreCompound: tyres.Medium, Plan: []racestate.StrategyStint{{EndLap: 40}}}
	if ShouldBox(rng.New(1), state, v, 50, DefaultConfig()) {
		t.Fatal("expected a car far from its stop lap to stay out")
	}
}

func TestSetPitIntentRequiresEntryWindow(t *testing.T) {
	e := NewEngine(nil)
	track := testTrack()
	state := &racestate.RaceState{CurrentLap: 10}
	v := &racestate.VehicleState{
		Damage:        50, // would box if evaluated
		DistanceOnLap: 0, // far from pit entry at 4800
		Plan:          []racestate.StrategyStint{{EndLap: 30}},
	}
	e.SetPitIntent(rng.New(1), track, state, v, 50)
	if v.BoxThisLap {
		t.Fatal("expected no pit intent outside the entry window")
	}
}

func TestSetPitIntentWithinEntryWindow(t *testing.T) {
	e := NewEngine(nil)
	track := testTrack()
	state := &racestate.RaceState{CurrentLap: 10}
	v := &racestate.VehicleState{
		Damage:        50,
		DistanceOnLap: 4400, // 400m before entry at 4800, within [50,1000]
		Plan:          []racestate.StrategyStint{{EndLap: 30}},
	}
	e.SetPitIntent(rng.New(1), track, state, v, 50)
	if !v.BoxThisLap {
		t.Fatal("expected damage to trigger a box decision within the entry window")
	}
}
