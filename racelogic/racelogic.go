package racelogic

import (
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
)

// System runs the pre-vehicle race-logic pass described in §2's control
// flow: safety car/incidents, pit-stop movement, DRS gating, overtake
// attempts, positions, morale, spatial awareness, and finish detection.
// It holds the static driver roster so every sub-step can look up skill
// and personality scores by id without threading them through every call.
type System struct {
	driversByID map[string]*trackmodel.Driver
}

// New returns a System bound to a driver roster. The roster must outlive
// the System; System keeps pointers into the slice's backing array.
func New(drivers []trackmodel.Driver) *System {
	s := &System{driversByID: make(map[string]*trackmodel.Driver, len(drivers))}
	for i := range drivers {
		s.driversByID[drivers[i].ID] = &drivers[i]
	}
	return s
}

func (s *System) driverByID(id string) *trackmodel.Driver {
	return s.driversByID[id]
}

// Update runs the full pre-vehicle pass for one tick, in the documented
// order: safety car/incidents, pit-stop machine, DRS gating, overtakes,
// positions/gaps, morale/concentration, spatial awareness, finish check.
func (s *System) Update(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, dt float64) {
	s.RunSafetyCarAndIncidents(r, track, state, dt)
	s.RunPitMachine(r, track, state, dt)
	s.UpdateDRS(track, state)
	s.RunOvertakes(r, track, state, dt)
	s.UpdatePositionsAndGaps(track, state)
	s.UpdateMoraleAndConcentration(state, dt)
	s.UpdateSpatialAwareness(track, state)
	s.CheckFinish(state)
}
