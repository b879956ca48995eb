// Package weather implements §4.3: a rolling forecast built from
// deterministic multi-frequency noise, interpolated down to a current
// cloud cover and rain intensity, plus temperatures derived from them and
// the slower evolution of water depth and rubber. Wind speed and direction
// change only when a real-weather push is applied; in simulation mode they
// are not evolved. A System instance keeps only its forecast-refresh time;
// all other mutable state lives on the racestate.RaceState it is passed
// each tick.
package weather

import (
	"math"

	"github.com/samber/lo"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
)

const (
	nodeSpacing      = 120.0  // seconds between initial forecast nodes
	initialNodeCount = 16
	refreshInterval  = 60.0   // seconds between forecast maintenance passes
	horizonAhead     = 1800.0 // seconds the forecast must always reach past elapsedTime

	macroPeriod = 5000.0
	mesoPeriod  = 1000.0
	microPeriod = 160.0
)

// System evolves a RaceState's weather fields in place. Its only state is
// the race time of the next forecast maintenance pass; the meso-node phase
// is drawn from the shared engine RNG once per generated node and is not
// stored, so replay stays deterministic for a given seed.
type System struct {
	nextRefreshAt float64
}

// New returns a weather System ready to seed a fresh race.
func New() *System {
	return &System{}
}

// InitializeForecast builds the initial 16-node, 120s-spaced forecast for a
// fresh race and sets the current scalar weather fields from it.
func (s *System) InitializeForecast(r randomSource, track *trackmodel.Track, state *racestate.RaceState) {
	state.WeatherForecast = make([]racestate.ForecastNode, 0, initialNodeCount)
	for i := 0; i < initialNodeCount; i++ {
		t := float64(i) * nodeSpacing
		state.WeatherForecast = append(state.WeatherForecast, s.generateNode(r, track, t))
	}
	s.nextRefreshAt = refreshInterval
	s.interpolate(state)
	s.updateTemperatures(track, state)
}

// randomSource is the minimal surface System needs from rng.Source, kept
// as an interface so weather tests can supply a fixed sequence.
type randomSource interface {
	Next() float64
	Range(lo, hi float64) float64
}

// generateNode synthesizes one forecast node at timestamp t using the
// three-sine combination from §4.3. The meso sine's phase is randomized
// once per node via a single RNG draw, consumed in the documented order
// (macro has no phase draw, meso draws one, micro has none).
func (s *System) generateNode(r randomSource, track *trackmodel.Track, t float64) racestate.ForecastNode {
	volatility := track.WeatherParams.Volatility
	rainProb := track.WeatherParams.RainProbability

	mesoPhase := r.Range(0, 2*math.Pi)

	macro := math.Sin(2 * math.Pi * t / macroPeriod)
	meso := math.Sin(2*math.Pi*t/mesoPeriod + mesoPhase)
	micro := math.Sin(2 * math.Pi * t / microPeriod)

	combined := 0.5*macro + 0.3*volatility*meso + 0.2*volatility*micro

	center := 30.0
	if rainProb > 0.5 {
		center = 60.0
	}

	cloud := tyresClamp(center+50*combined, 0, 100)
	var rain float64
	if cloud > 70 {
		frac := (cloud - 70) / 30
		rain = frac * frac * 100
	}

	return racestate.ForecastNode{TimeOffset: t, CloudCover: cloud, RainIntensity: rain}
}

// MaintainForecast discards stale nodes and extends the horizon, run once
// per refreshInterval of race time (§4.3). It is a no-op in real mode,
// where forecast generation is suspended.
func (s *System) MaintainForecast(r randomSource, track *trackmodel.Track, state *racestate.RaceState) {
	if state.WeatherMode == racestate.WeatherModeReal {
		return
	}
	if state.ElapsedTime < s.nextRefreshAt {
		return
	}
	s.nextRefreshAt = state.ElapsedTime + refreshInterval

	keepFrom := 0
	for i := len(state.WeatherForecast) - 1; i >= 0; i-- {
		if state.WeatherForecast[i].TimeOffset <= state.ElapsedTime {
			keepFrom = i
			break
		}
	}
	state.WeatherForecast = state.WeatherForecast[keepFrom:]

	lastT := state.WeatherForecast[len(state.WeatherForecast)-1].TimeOffset
	for lastT < state.ElapsedTime+horizonAhead {
		lastT += nodeSpacing
		state.WeatherForecast = append(state.WeatherForecast, s.generateNode(r, track, lastT))
	}
}

// Update runs one tick of the weather system: forecast maintenance,
// interpolation to current scalars (or the last push in real mode),
// temperature derivation, and water depth / rubber evolution. Wind is not
// evolved here; only a real-weather push sets it.
func (s *System) Update(r randomSource, track *trackmodel.Track, state *racestate.RaceState, dt float64) {
	s.MaintainForecast(r, track, state)

	if state.WeatherMode == racestate.WeatherModeReal {
		s.applyRealWeather(state)
	} else {
		s.interpolate(state)
		s.updateTemperatures(track, state)
	}

	s.evolveWaterDepth(state, dt)
	s.evolveRubber(state, dt)
}

// interpolate derives the current scalar cloud cover and rain intensity by
// linearly interpolating between the two forecast nodes bracketing
// ElapsedTime, then buckets rain intensity into the discrete Weather
// condition.
func (s *System) interpolate(state *racestate.RaceState) {
	nodes := state.WeatherForecast
	if len(nodes) == 0 {
		return
	}
	t := state.ElapsedTime

	var a, b racestate.ForecastNode
	found := false
	for i := 0; i < len(nodes)-1; i++ {
		if t >= nodes[i].TimeOffset && t <= nodes[i+1].TimeOffset {
			a, b = nodes[i], nodes[i+1]
			found = true
			break
		}
	}
	if !found {
		if t < nodes[0].TimeOffset {
			a, b = nodes[0], nodes[0]
		} else {
			last := nodes[len(nodes)-1]
			a, b = last, last
		}
	}

	frac := 0.0
	if b.TimeOffset != a.TimeOffset {
		frac = (t - a.TimeOffset) / (b.TimeOffset - a.TimeOffset)
	}

	state.CloudCover = lerp(a.CloudCover, b.CloudCover, frac)
	state.RainIntensityLevel = lerp(a.RainIntensity, b.RainIntensity, frac)
	state.Weather = classify(state.RainIntensityLevel)
}

func classify(rain float64) racestate.WeatherCondition {
	switch {
	case rain > 50:
		return racestate.HeavyRain
	case rain > 5:
		return racestate.LightRain
	default:
		return racestate.Dry
	}
}

// updateTemperatures derives air and track temperature from the track's
// base temperature and current cloud/rain (§4.3).
func (s *System) updateTemperatures(track *trackmodel.Track, state *racestate.RaceState) {
	state.AirTemp = track.BaseTemperature - 5*(state.RainIntensityLevel/100) - 3*(state.CloudCover/100)
	if state.RainIntensityLevel > 5 {
		state.TrackTemp = state.AirTemp + 1
	} else {
		state.TrackTemp = state.AirTemp + 15*(1-state.CloudCover/100)
	}
}

// applyRealWeather derives the current scalar fields from the last pushed
// external payload instead of the synthetic forecast.
func (s *System) applyRealWeather(state *racestate.RaceState) {
	data := state.RealWeather.LastPush
	state.CloudCover = data.CloudCover
	state.WindSpeed = data.WindSpeed
	state.WindDirection = data.WindDirection
	state.AirTemp = data.Temp
	state.RainIntensityLevel = tyresClamp(data.Precipitation/5*100, 0, 100)
	state.Weather = classify(state.RainIntensityLevel)
	if state.RainIntensityLevel > 5 {
		state.TrackTemp = state.AirTemp + 1
	} else {
		state.TrackTemp = state.AirTemp + 15*(1-state.CloudCover/100)
	}
}

// evolveWaterDepth runs the per-second accumulation/drainage/evaporation
// model from §4.3, applied uniformly to every sector and mirrored to the
// race-wide TrackWaterDepth.
func (s *System) evolveWaterDepth(state *racestate.RaceState, dt float64) {
	rain := state.RainIntensityLevel
	raining := rain >= 5

	accumulation := (rain / 100) * (10.0 / 3600.0)
	drainage := 2.0 / 3600.0
	evapRate := 0.5 / 3600.0
	if !raining {
		evapRate *= 4
	}

	var net float64
	if raining {
		net = accumulation - drainage
	} else {
		net = -(drainage + evapRate)
	}

	delta := net * dt

	if len(state.SectorConditions) == 0 {
		return
	}
	for i := range state.SectorConditions {
		wd := state.SectorConditions[i].WaterDepth + delta
		state.SectorConditions[i].WaterDepth = math.Max(0, wd)
	}
	state.TrackWaterDepth = math.Max(0, state.SectorConditions[0].WaterDepth)
}

// evolveRubber lets rubber decay slowly on any sector sitting under
// standing water above 0.5mm.
func (s *System) evolveRubber(state *racestate.RaceState, dt float64) {
	const decayRate = 0.05 // rubber points lost per second, whatever the depth above 0.5mm

	lo.ForEach(state.SectorConditions, func(_ racestate.SectorCondition, i int) {
		sc := &state.SectorConditions[i]
		if sc.WaterDepth > 0.5 {
			sc.RubberLevel = math.Max(0, sc.RubberLevel-decayRate*dt)
		}
	})
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}

func tyresClamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
