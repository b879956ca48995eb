package racelogic

import (
	"testing"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
)

func positionsTestTrack() *trackmodel.Track {
	return &trackmodel.Track{TotalDistance: 5000}
}

func TestUpdatePositionsAndGapsOrdersByLapThenDistance(t *testing.T) {
	s := New(nil)
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "back", LapCount: 3, DistanceOnLap: 1000, Speed: 50},
			{DriverID: "front", LapCount: 4, DistanceOnLap: 100, Speed: 50},
			{DriverID: "mid", LapCount: 3, DistanceOnLap: 4000, Speed: 50},
		},
	}
	s.UpdatePositionsAndGaps(positionsTestTrack(), state)

	want := map[string]int{"front": 1, "mid": 2, "back": 3}
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if v.Position != want[v.DriverID] {
			t.Errorf("%s: expected position %d, got %d", v.DriverID, want[v.DriverID], v.Position)
		}
	}
}

func TestUpdatePositionsAndGapsLeaderHasNoGap(t *testing.T) {
	s := New(nil)
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "leader", LapCount: 1, DistanceOnLap: 2000, Speed: 50},
			{DriverID: "second", LapCount: 1, DistanceOnLap: 1000, Speed: 50},
		},
	}
	s.UpdatePositionsAndGaps(positionsTestTrack(), state)

	leader := &state.Vehicles[0]
	second := &state.Vehicles[1]
	if leader.GapToLeader != -1 || leader.GapToAhead != -1 {
		t.Fatalf("expected leader to carry sentinel gaps, got %v/%v", leader.GapToLeader, leader.GapToAhead)
	}
	if second.GapToAhead <= 0 {
		t.Fatalf("expected a positive gap behind the leader, got %v", second.GapToAhead)
	}
}

func TestUpdatePositionsAndGapsMoraleOnGainAndLoss(t *testing.T) {
	s := New(nil)
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "gainer", LapCount: 2, DistanceOnLap: 100, Speed: 50, Position: 2, Morale: 50, Concentration: 50},
			{DriverID: "loser", LapCount: 2, DistanceOnLap: 50, Speed: 50, Position: 1, Morale: 50, Concentration: 50},
		},
	}
	s.UpdatePositionsAndGaps(positionsTestTrack(), state)

	gainer := &state.Vehicles[0]
	loser := &state.Vehicles[1]
	if gainer.Position != 1 {
		t.Fatalf("expected gainer to take P1, got %d", gainer.Position)
	}
	if gainer.Morale <= 50 || gainer.Concentration >= 50 {
		t.Fatalf("expected gainer's morale up and concentration down, got morale=%v concentration=%v", gainer.Morale, gainer.Concentration)
	}
	if loser.Morale >= 50 || loser.Concentration >= 50 {
		t.Fatalf("expected loser's morale and concentration both down, got morale=%v concentration=%v", loser.Morale, loser.Concentration)
	}
}

func TestUpdateSpatialAwarenessFlagsDirtyAirAndBattling(t *testing.T) {
	s := New(nil)
	track := positionsTestTrack()
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "front", DistanceOnLap: 1000, Speed: 50, LapCount: 1},
			{DriverID: "close-behind", DistanceOnLap: 985, Speed: 50, LapCount: 1}, // 15m/50 = 0.3s: battling
		},
	}
	s.UpdateSpatialAwareness(track, state)

	follower := &state.Vehicles[1]
	if !follower.InDirtyAir {
		t.Fatal("expected the trailing car to be in dirty air")
	}
	if !follower.IsBattling {
		t.Fatal("expected a 0.3s gap to count as battling")
	}
}

func TestUpdateSpatialAwarenessSkipsPitAndInactive(t *testing.T) {
	s := New(nil)
	track := positionsTestTrack()
	state := &racestate.RaceState{
		Vehicles: []racestate.VehicleState{
			{DriverID: "racing", DistanceOnLap: 1000, Speed: 50},
			{DriverID: "in-pit", DistanceOnLap: 990, Speed: 50, IsInPit: true},
			{DriverID: "out", DistanceOnLap: 995, Speed: 50, Damage: 100},
		},
	}
	s.UpdateSpatialAwareness(track, state)

	racing := &state.Vehicles[0]
	if racing.InDirtyAir || racing.IsBattling {
		t.Fatal("the only active non-pit car should have no neighbors to be close to")
	}
}

func TestUpdateMoraleAndConcentrationDriftsTowardBaseline(t *testing.T) {
	s := New(nil)
	state := &racestate.RaceState{
		CurrentLap: 5,
		Vehicles:   []racestate.VehicleState{{Morale: 50, Concentration: 50}},
	}
	s.UpdateMoraleAndConcentration(state, 1.0)
	v := &state.Vehicles[0]
	if v.Morale <= 50 {
		t.Fatalf("expected morale to drift up toward 80, got %v", v.Morale)
	}
}

func TestUpdateMoraleAndConcentrationLap1ChaosInSectorOne(t *testing.T) {
	s := New(nil)
	state := &racestate.RaceState{
		CurrentLap: 1,
		Vehicles:   []racestate.VehicleState{{Concentration: 50, CurrentSector: 1}},
	}
	s.UpdateMoraleAndConcentration(state, 1.0)
	v := &state.Vehicles[0]
	if v.Concentration >= 50 {
		t.Fatalf("expected lap-1 sector-1 chaos to reduce concentration, got %v", v.Concentration)
	}
}
