package racestate

import "github.com/psybe/pitwall/trackmodel"

// WeatherCondition is the discrete weather bucket derived from the
// continuous rain-intensity value.
type WeatherCondition string

const (
	Dry       WeatherCondition = "dry"
	LightRain WeatherCondition = "light-rain"
	HeavyRain WeatherCondition = "heavy-rain"
)

// WeatherMode selects whether the weather system generates its own
// forecast or is driven by externally pushed data (§4.3's "real mode").
type WeatherMode string

const (
	WeatherModeSimulation WeatherMode = "simulation"
	WeatherModeReal       WeatherMode = "real"
)

// SafetyCarStatus is the race-neutralization state.
type SafetyCarStatus string

const (
	SafetyCarNone     SafetyCarStatus = "none"
	SafetyCarVSC      SafetyCarStatus = "vsc"
	SafetyCarSC       SafetyCarStatus = "sc"
	SafetyCarRedFlag  SafetyCarStatus = "red-flag"
)

// Status is the race's coarse lifecycle state.
type Status string

const (
	StatusPreRace  Status = "pre-race"
	StatusRacing   Status = "racing"
	StatusFinished Status = "finished"
)

// ForecastNode is one point in the rolling weather forecast (§4.3).
type ForecastNode struct {
	TimeOffset   float64 // seconds since race start
	CloudCover   float64 // [0,100]
	RainIntensity float64 // [0,100]
}

// SectorCondition is the per-sector evolving water depth and rubber level.
type SectorCondition struct {
	WaterDepth  float64 // mm
	RubberLevel float64 // [0,100]
}

// RaceState is the full mutable simulation: one instance per race,
// published as an immutable snapshot every tick (§3, §5).
type RaceState struct {
	ID      string
	TrackID string

	CurrentLap int
	TotalLaps  int

	Weather         WeatherCondition
	WeatherMode     WeatherMode
	WeatherForecast []ForecastNode

	CloudCover         float64
	RainIntensityLevel float64
	WindSpeed          float64
	WindDirection      float64 // [0,360)
	TrackTemp          float64
	AirTemp            float64
	RubberLevel        float64
	TrackWaterDepth    float64

	SectorConditions []SectorCondition

	SafetyCar      SafetyCarStatus
	safetyCarTimer float64

	Vehicles []VehicleState

	Status        Status
	CheckeredFlag bool
	WinnerID      string

	ElapsedTime float64 // seconds

	// Diagnostics ring buffer (see SPEC_FULL.md "Supplemented features").
	Diagnostics []Diagnostic

	// RealWeather tracks freshness of externally pushed weather data.
	RealWeather RealWeatherFeed
}

// Diagnostic is one entry in the anomaly ring buffer: numerical clamps,
// exhausted strategy plans, ignored external pushes.
type Diagnostic struct {
	ElapsedTime float64
	Kind        string
	DriverID    string
	Message     string
}

const maxDiagnostics = 50

// RecordDiagnostic appends a diagnostic, evicting the oldest entry once the
// ring buffer is full.
func (r *RaceState) RecordDiagnostic(kind, driverID, message string) {
	d := Diagnostic{ElapsedTime: r.ElapsedTime, Kind: kind, DriverID: driverID, Message: message}
	if len(r.Diagnostics) >= maxDiagnostics {
		r.Diagnostics = append(r.Diagnostics[1:], d)
		return
	}
	r.Diagnostics = append(r.Diagnostics, d)
}

// RealWeatherFeed is the external real-weather push entry point's observed
// health: when data last arrived, and what it contained.
type RealWeatherFeed struct {
	LastPush      RealWeatherData
	LastPushAt    float64 // ElapsedTime at last push, -1 if never pushed
	StaleAfter    float64 // seconds; push considered stale past this age
}

// RealWeatherData is the externally supplied payload (§6).
type RealWeatherData struct {
	CloudCover    float64 // [0,100]
	WindSpeed     float64
	WindDirection float64 // [0,360)
	Temp          float64 // Celsius
	Precipitation float64 // mm/h
}

// IsStale reports whether the last real-weather push is older than
// StaleAfter, given the current elapsed time. A feed that has never
// received a push is always stale.
func (f *RealWeatherFeed) IsStale(elapsedTime float64) bool {
	if f.LastPushAt < 0 {
		return true
	}
	return elapsedTime-f.LastPushAt > f.StaleAfter
}

// SafetyCarTimer and its setter expose the unexported safety-car countdown
// to racelogic's incident controller, which is their only caller.
func (r *RaceState) SafetyCarTimer() float64     { return r.safetyCarTimer }
func (r *RaceState) SetSafetyCarTimer(s float64) { r.safetyCarTimer = s }

// VehicleByID finds a vehicle by driver id, or nil.
func (r *RaceState) VehicleByID(id string) *VehicleState {
	for i := range r.Vehicles {
		if r.Vehicles[i].DriverID == id {
			return &r.Vehicles[i]
		}
	}
	return nil
}

// ActiveVehicles returns pointers to vehicles that have not retired.
func (r *RaceState) ActiveVehicles() []*VehicleState {
	out := make([]*VehicleState, 0, len(r.Vehicles))
	for i := range r.Vehicles {
		if r.Vehicles[i].IsActive() {
			out = append(out, &r.Vehicles[i])
		}
	}
	return out
}

// Snapshot is the published, logically-immutable view handed to external
// consumers (§6). It is a deep value copy of RaceState so that a consumer
// holding one cannot observe subsequent ticks.
type Snapshot struct {
	RaceState
}

// Clone produces a Snapshot that owns its own slices, safe to read from a
// goroutine other than the one ticking the engine.
func (r *RaceState) Clone() Snapshot {
	s := Snapshot{RaceState: *r}
	s.WeatherForecast = append([]ForecastNode(nil), r.WeatherForecast...)
	s.SectorConditions = append([]SectorCondition(nil), r.SectorConditions...)
	s.Diagnostics = append([]Diagnostic(nil), r.Diagnostics...)
	s.Vehicles = make([]VehicleState, len(r.Vehicles))
	for i := range r.Vehicles {
		v := r.Vehicles[i]
		v.Plan = append([]StrategyStint(nil), r.Vehicles[i].Plan...)
		v.CurrentLapTrace = append([]TelemetryPoint(nil), r.Vehicles[i].CurrentLapTrace...)
		v.LastLapTrace = append([]TelemetryPoint(nil), r.Vehicles[i].LastLapTrace...)
		s.Vehicles[i] = v
	}
	return s
}

// TrackRef is carried alongside RaceState by the engine (not embedded in
// it) because the track is static and shared, not per-race mutable state;
// it is declared here only so packages that want "state + its track" have
// a name for the pair without importing engine (which would be a cycle).
type TrackRef = *trackmodel.Track
