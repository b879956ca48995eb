package racelogic

import (
	"testing"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

func incidentsTestTrack() *trackmodel.Track {
	return &trackmodel.Track{
		TotalDistance:   5000,
		TrackDifficulty: 0.2,
		Sectors: []trackmodel.Sector{
			{ID: 1, StartDistance: 0, EndDistance: 5000, Type: trackmodel.SectorStraight},
		},
	}
}

func TestRunSafetyCarAndIncidentsCountsDownTimer(t *testing.T) {
	drivers := []trackmodel.Driver{{ID: "d1"}}
	s := New(drivers)
	state := &racestate.RaceState{SafetyCar: racestate.SafetyCarVSC}
	state.SetSafetyCarTimer(1.0)

	s.RunSafetyCarAndIncidents(rng.New(1), incidentsTestTrack(), state, 0.5)

	if state.SafetyCar != racestate.SafetyCarVSC {
		t.Fatalf("expected the VSC to still be active mid-countdown, got %v", state.SafetyCar)
	}
	if state.SafetyCarTimer() != 0.5 {
		t.Fatalf("expected the timer to tick down by dt, got %v", state.SafetyCarTimer())
	}
}

func TestRunSafetyCarAndIncidentsEndsPeriodWhenTimerExpires(t *testing.T) {
	drivers := []trackmodel.Driver{{ID: "d1"}}
	s := New(drivers)
	state := &racestate.RaceState{SafetyCar: racestate.SafetyCarVSC}
	state.SetSafetyCarTimer(0.2)

	s.RunSafetyCarAndIncidents(rng.New(1), incidentsTestTrack(), state, 0.5)

	if state.SafetyCar != racestate.SafetyCarNone {
		t.Fatalf("expected the safety-car period to end once the timer expires, got %v", state.SafetyCar)
	}
}

func TestRunSafetyCarAndIncidentsSkipsPitAndFinishedCars(t *testing.T) {
	drivers := []trackmodel.Driver{{ID: "pit-car"}, {ID: "finished-car"}}
	s := New(drivers)
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "pit-car", IsInPit: true, Concentration: 0, TyreWear: 100},
			{DriverID: "finished-car", HasFinished: true, Concentration: 0, TyreWear: 100},
		},
	}
	s.RunSafetyCarAndIncidents(rng.New(1), incidentsTestTrack(), state, 0.1)
	if state.SafetyCar != racestate.SafetyCarNone {
		t.Fatal("a pit-lane or already-finished car should never trigger an incident")
	}
}

func TestEndSafetyCarPeriodTriggersRedFlagRestart(t *testing.T) {
	drivers := []trackmodel.Driver{{ID: "a"}, {ID: "b"}}
	s := New(drivers)
	track := incidentsTestTrack()
	state := &racestate.RaceState{
		SafetyCar: racestate.SafetyCarRedFlag,
		Vehicles: []racestate.VehicleState{
			{DriverID: "a", Position: 1, LapCount: 3, Speed: 60, DistanceOnLap: 4000, IsBattling: true},
			{DriverID: "b", Position: 2, LapCount: 2, Speed: 55, DistanceOnLap: 3000},
		},
	}
	state.SetSafetyCarTimer(0.05)

	s.RunSafetyCarAndIncidents(rng.New(1), track, state, 0.1)

	if state.SafetyCar != racestate.SafetyCarNone {
		t.Fatalf("expected the red flag to clear once the restart timer expires, got %v", state.SafetyCar)
	}
	for _, v := range state.Vehicles {
		if v.Speed != 0 {
			t.Fatalf("expected %s to be reset to a standing start, got speed %v", v.DriverID, v.Speed)
		}
		if v.LapCount != 3 {
			t.Fatalf("expected %s to be unlapped to the leader's lap count, got %d", v.DriverID, v.LapCount)
		}
		if v.IsBattling {
			t.Fatalf("expected transient flags to be cleared for %s", v.DriverID)
		}
	}
}

func TestWrongCompoundForWeatherSlickInRain(t *testing.T) {
	if !wrongCompoundForWeather(tyres.Soft, 40) {
		t.Fatal("expected slick tyres in the rain to be flagged as the wrong compound")
	}
	if wrongCompoundForWeather(tyres.Wet, 40) {
		t.Fatal("wet tyres in the rain should not be flagged")
	}
}
