package racestate

import "testing"

func TestRecordDiagnosticEvictsOldestPastCapacity(t *testing.T) {
	r := &RaceState{}
	for i := 0; i < maxDiagnostics+5; i++ {
		r.RecordDiagnostic("kind", "driver", "message")
	}
	if len(r.Diagnostics) != maxDiagnostics {
		t.Fatalf("expected the ring buffer capped at %d, got %d", maxDiagnostics, len(r.Diagnostics))
	}
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	r := &RaceState{
		Vehicles: []VehicleState{{DriverID: "d1", Plan: []StrategyStint{{StartLap: 1, EndLap: 10}}}},
	}
	snap := r.Clone()

	snap.Vehicles[0].Plan[0].EndLap = 99
	if r.Vehicles[0].Plan[0].EndLap == 99 {
		t.Fatal("mutating a cloned vehicle's plan should not affect the source state")
	}

	r.Vehicles[0].DriverID = "mutated"
	if snap.Vehicles[0].DriverID == "mutated" {
		t.Fatal("mutating the source state after cloning should not affect the snapshot")
	}
}

func TestActiveVehiclesExcludesRetired(t *testing.T) {
	r := &RaceState{
		Vehicles: []VehicleState{
			{DriverID: "running"},
			{DriverID: "retired", Damage: 100},
		},
	}
	active := r.ActiveVehicles()
	if len(active) != 1 || active[0].DriverID != "running" {
		t.Fatalf("expected only the non-retired car, got %+v", active)
	}
}
