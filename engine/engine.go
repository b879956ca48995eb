// Package engine implements §4.7: the orchestrator that owns the race
// state and every sub-system, and drives the fixed-timestep update in the
// phase order §2 specifies. It is the only package that sequences the
// other systems; none of them know about each other directly.
package engine

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/psybe/pitwall/physics"
	"github.com/psybe/pitwall/racelogic"
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/strategy"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/weather"
)

// maxTickSeconds is the per-call dt ceiling from §5; callers must
// subdivide a larger external step themselves.
const maxTickSeconds = 0.1

// Engine owns one race's mutable state and the five sub-systems that
// advance it. It is not safe for concurrent use except where noted —
// the tick path is strictly single-threaded per §5, and the mutex below
// guards only the published-snapshot boundary between the ticking
// goroutine and whatever goroutine calls GetState/UpdateStrategy from the
// outside.
type Engine struct {
	mu sync.RWMutex

	track   *trackmodel.Track
	drivers []trackmodel.Driver

	rng      *rng.Source
	weather  *weather.System
	racelogic *racelogic.System
	physics  *physics.System
	strategy *strategy.Engine

	state *racestate.RaceState

	logger zerolog.Logger
}

// New validates the track and driver roster (§7's "input invalid" kind)
// and builds a fresh pre-race Engine seeded from seed.
func New(track *trackmodel.Track, drivers []trackmodel.Driver, seed uint32, logger zerolog.Logger) (*Engine, error) {
	if err := trackmodel.ValidateTrack(track); err != nil {
		return nil, strategy.NewInputInvalid("invalid track", err)
	}
	if err := trackmodel.ValidateDrivers(drivers); err != nil {
		return nil, strategy.NewInputInvalid("invalid drivers", err)
	}

	source := rng.New(seed)
	state := racelogic.NewRaceState(track, track.DefaultTotalLaps)
	state.ID = uuid.NewString()

	w := weather.New()
	w.InitializeForecast(source, track, state)

	racelogic.PopulateGrid(source, track, drivers, state)

	e := &Engine{
		track:     track,
		drivers:   drivers,
		rng:       source,
		weather:   w,
		racelogic: racelogic.New(drivers),
		physics:   physics.New(),
		strategy:  strategy.NewEngine(nil),
		state:     state,
		logger:    logger,
	}

	plans := e.strategy.PrecomputePlans(track, drivers, state.TotalLaps, track.WeatherParams.RainProbability, seed)
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		for j := range drivers {
			if drivers[j].ID == v.DriverID {
				v.Plan = plans[j]
				break
			}
		}
	}

	return e, nil
}

// StartRace transitions pre-race -> racing (§4.7). Calling it again, or
// on a race that has already finished, is a no-op.
func (e *Engine) StartRace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == racestate.StatusPreRace {
		e.state.Status = racestate.StatusRacing
	}
}

// Update advances the simulation by dt seconds, which must not exceed
// maxTickSeconds; callers subdivide larger external steps themselves
// (§5). It is a no-op unless the race is currently racing, and a no-op
// once finished (§7's "race finished" error kind).
func (e *Engine) Update(dt float64) racestate.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dt > maxTickSeconds {
		dt = maxTickSeconds
	}
	if dt < 0 {
		dt = 0
	}

	if e.state.Status != racestate.StatusRacing {
		if e.state.Status == racestate.StatusFinished {
			e.state.RecordDiagnostic(strategy.ErrorKindRaceFinishedNoOp.String(), "", "update called after race finished")
		}
		return e.state.Clone()
	}

	e.state.ElapsedTime += dt

	e.weather.Update(e.rng, e.track, e.state, dt)
	e.racelogic.Update(e.rng, e.track, e.state, dt)

	for i := range e.state.Vehicles {
		v := &e.state.Vehicles[i]
		if !v.IsActive() || v.IsInPit {
			continue
		}
		driver := e.driverByID(v.DriverID)
		if driver == nil {
			continue
		}
		e.strategy.SetPitIntent(e.rng, e.track, e.state, v, driver.Personality.Aggression)
		e.physics.Update(e.rng, e.track, e.state, driver, v, e.neighborsOf(v), dt)
		e.guardNumericalAnomaly(v)
	}

	return e.state.Clone()
}

// neighborsOf builds the minimal ahead-vehicle view physics needs from the
// leaderboard racelogic already computed this tick (Position, GapToAhead).
func (e *Engine) neighborsOf(v *racestate.VehicleState) physics.Neighbors {
	if v.Position <= 1 {
		return physics.Neighbors{IsLeader: true}
	}
	for i := range e.state.Vehicles {
		if e.state.Vehicles[i].Position == v.Position-1 {
			return physics.Neighbors{AheadSpeed: e.state.Vehicles[i].Speed}
		}
	}
	return physics.Neighbors{}
}

// guardNumericalAnomaly catches the rare case where accumulated
// floating-point error pushes a vehicle's speed to NaN/Inf (§7's
// "numerical anomaly" kind): the tick is never aborted, the value is
// clamped back to a safe rest state and the occurrence is recorded.
func (e *Engine) guardNumericalAnomaly(v *racestate.VehicleState) {
	if !math.IsNaN(v.Speed) && !math.IsInf(v.Speed, 0) {
		return
	}
	e.state.RecordDiagnostic(strategy.ErrorKindNumericalAnomaly.String(), v.DriverID, "vehicle speed became non-finite, reset to 0")
	v.Speed = 0
}

func (e *Engine) driverByID(id string) *trackmodel.Driver {
	for i := range e.drivers {
		if e.drivers[i].ID == id {
			return &e.drivers[i]
		}
	}
	return nil
}

// GetState returns the current published snapshot (§4.7).
func (e *Engine) GetState() racestate.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// UpdateStrategy applies an external channel update (§6), throttled by
// the strategy engine's rate limiter.
func (e *Engine) UpdateStrategy(driverID, channel, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.strategy.AllowStrategyUpdate() {
		e.state.RecordDiagnostic("strategy_update_throttled", driverID, channel)
		return
	}
	v := e.state.VehicleByID(driverID)
	if v == nil {
		e.state.RecordDiagnostic(strategy.ErrorKindInputInvalid.String(), driverID, "unknown driver id for channel "+channel)
		return
	}
	e.strategy.ApplyStrategyUpdate(v, channel, value)
}

// SetWeatherMode switches between simulation and real weather modes
// (§6). Setting the same mode twice is a no-op on state.
func (e *Engine) SetWeatherMode(mode racestate.WeatherMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.WeatherMode == mode {
		return
	}
	e.state.WeatherMode = mode
}

// SetRealWeatherData pushes an external weather payload (§6). It is a
// no-op unless the engine is in real-weather mode (§7's "external weather
// push while in simulation mode" error kind).
func (e *Engine) SetRealWeatherData(data racestate.RealWeatherData) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.WeatherMode != racestate.WeatherModeReal {
		e.state.RecordDiagnostic(strategy.ErrorKindWeatherPushIgnored.String(), "", "engine not in real-weather mode")
		return
	}
	e.state.RealWeather.LastPush = data
	e.state.RealWeather.LastPushAt = e.state.ElapsedTime
}
