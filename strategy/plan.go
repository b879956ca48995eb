package strategy

import (
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

// baseCompoundLife is the reference stint length (laps) for each dry
// compound before track/driver adjustment, per §4.5.
var baseCompoundLife = map[tyres.Compound]float64{
	tyres.Soft:   15,
	tyres.Medium: 25,
	tyres.Hard:   40,
}

// candidateSequences are the four stint shapes §4.5 enumerates.
var candidateSequences = [][]tyres.Compound{
	{tyres.Soft, tyres.Hard},
	{tyres.Medium, tyres.Hard},
	{tyres.Soft, tyres.Medium, tyres.Medium},
	{tyres.Soft, tyres.Medium, tyres.Soft},
}

// effectiveLife adjusts a compound's base life by the track's degradation
// factor, the driver's tyre-management skill, and a [0.9,1.1] random
// multiplier drawn from the shared RNG.
func effectiveLife(compound tyres.Compound, degFactor, tyreMgmt float64, r *rng.Source) float64 {
	base := baseCompoundLife[compound]
	mgmtFactor := 1 - (tyreMgmt-50)/200
	randFactor := r.Range(0.9, 1.1)
	return base / (degFactor * mgmtFactor) * randFactor
}

// PlanPreRace builds the stint plan for one driver, per §4.5: when
// rainProbability>0.6 the driver starts on a two-stint wet/intermediate
// plan split 40/60 of the race; otherwise one of four dry candidate
// sequences is chosen, weighted by the driver's aggression, with stop
// laps placed at StopWindowFrac of each compound's effective life and a
// jitter applied to every non-final stop.
func (s *Engine) PlanPreRace(track *trackmodel.Track, driver *trackmodel.Driver, totalLaps int, rainProbability float64, r *rng.Source) []racestate.StrategyStint {
	if rainProbability > 0.6 {
		return wetWeatherPlan(totalLaps)
	}

	candidates := make([][]racestate.StrategyStint, 0, len(candidateSequences))
	for _, seq := range candidateSequences {
		candidates = append(candidates, buildDrySequencePlan(track, driver, totalLaps, seq, r, s.config))
	}

	idx := pickWeightedByAggression(driver.Personality.Aggression, s.config.AggressionSplit, len(candidates), r)
	return candidates[idx]
}

func wetWeatherPlan(totalLaps int) []racestate.StrategyStint {
	split := int(float64(totalLaps) * 0.4)
	if split < 1 {
		split = 1
	}
	return []racestate.StrategyStint{
		{Compound: tyres.Wet, StartLap: 1, EndLap: split},
		{Compound: tyres.Intermediate, StartLap: split + 1, EndLap: totalLaps},
	}
}

func buildDrySequencePlan(track *trackmodel.Track, driver *trackmodel.Driver, totalLaps int, seq []tyres.Compound, r *rng.Source, cfg *Config) []racestate.StrategyStint {
	plan := make([]racestate.StrategyStint, 0, len(seq))
	lap := 1
	for i, compound := range seq {
		life := effectiveLife(compound, track.TireDegradationFactor, driver.Skill.TyreManagement, r)
		stopLap := lap + int(life*cfg.StopWindowFrac)

		last := i == len(seq)-1
		if !last {
			stopLap += r.RangeInt(-cfg.JitterLaps, cfg.JitterLaps)
		}
		if stopLap <= lap {
			stopLap = lap + 1
		}
		if last || stopLap > totalLaps {
			stopLap = totalLaps
		}

		plan = append(plan, racestate.StrategyStint{Compound: compound, StartLap: lap, EndLap: stopLap})
		lap = stopLap + 1
		if lap > totalLaps {
			break
		}
	}
	enforceMonotonicEndLaps(plan)
	return plan
}

// enforceMonotonicEndLaps guarantees each stint's EndLap is strictly
// greater than the previous, collapsing the rare jitter case where two
// adjacent stops land on the same lap.
func enforceMonotonicEndLaps(plan []racestate.StrategyStint) {
	for i := 1; i < len(plan); i++ {
		if plan[i].EndLap <= plan[i-1].EndLap {
			plan[i].EndLap = plan[i-1].EndLap + 1
		}
		if plan[i].StartLap <= plan[i-1].EndLap {
			plan[i].StartLap = plan[i-1].EndLap + 1
		}
	}
}

// pickWeightedByAggression implements the "high aggression -> 60% pick an
// aggressive plan, low -> 60% conservative" weighting. Candidates are
// assumed ordered from the most aggressive sequence (pure push, fewest
// stops) to the most conservative; with four candidates the first half is
// "aggressive" and the second half "conservative".
func pickWeightedByAggression(aggression, split float64, candidateCount int, r *rng.Source) int {
	aggressiveHalf := candidateCount / 2
	aggressive := aggression > split

	preferAggressive := 0.5
	if aggressive {
		preferAggressive = 0.6
	} else {
		preferAggressive = 0.4
	}

	if r.Chance(preferAggressive) {
		return r.RangeInt(0, aggressiveHalf-1)
	}
	return r.RangeInt(aggressiveHalf, candidateCount-1)
}

// ShouldBox implements the in-race decision of §4.5. It is only meaningful
// within the pit-entry window (50-1000m before entry per §6's boxThisLap
// contract); callers are expected to gate on position first. aggression is
// the driver's personality score, consulted for the undercut bump.
func ShouldBox(r *rng.Source, state *racestate.RaceState, v *racestate.VehicleState, aggression float64, cfg *Config) bool {
	if tyreWeatherMismatch(state.RainIntensityLevel, v.TyreCompound) && !forecastContradicts(state, v) {
		return true
	}
	if v.Damage > 15 {
		return true
	}
	if v.TyreWear > 85 {
		return true
	}

	plannedStop, ok := currentPlannedEndLap(v)
	if !ok {
		return false
	}
	delta := plannedStop - state.CurrentLap
	if delta < -cfg.PitWindowLaps || delta > cfg.PitWindowLaps {
		return false
	}

	proximity := 1 - float64(abs(delta))/float64(cfg.PitWindowLaps+1)
	prob := 0.2 + 0.6*proximity + v.TyreWear/200
	if aggression > cfg.AggressionThreshold {
		prob += cfg.UndercutBonus
	}
	return r.Chance(tyres.Clamp(prob, 0, 1))
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func tyreWeatherMismatch(rain float64, compound tyres.Compound) bool {
	slick := compound == tyres.Soft || compound == tyres.Medium || compound == tyres.Hard
	rainCompound := compound == tyres.Intermediate || compound == tyres.Wet
	if slick && rain > 10 {
		return true
	}
	if rainCompound && rain < 10 {
		return true
	}
	return false
}

// forecastContradicts implements the forecast override: if the current
// compound matches the 300-second forecast ideal, stay out unless on
// slicks in heavy rain (>40).
func forecastContradicts(state *racestate.RaceState, v *racestate.VehicleState) bool {
	mean := forecastMean(state, 300)
	idealWet := mean > 10
	onSlick := v.TyreCompound == tyres.Soft || v.TyreCompound == tyres.Medium || v.TyreCompound == tyres.Hard
	matches := (idealWet && !onSlick) || (!idealWet && onSlick)
	if !matches {
		return false
	}
	if onSlick && state.RainIntensityLevel > 40 {
		return false
	}
	return true
}

func forecastMean(state *racestate.RaceState, horizonSeconds float64) float64 {
	cutoff := state.ElapsedTime + horizonSeconds
	var sum float64
	var n int
	for _, node := range state.WeatherForecast {
		if node.TimeOffset < state.ElapsedTime || node.TimeOffset > cutoff {
			continue
		}
		sum += node.RainIntensity
		n++
	}
	if n == 0 {
		return state.RainIntensityLevel
	}
	return sum / float64(n)
}

func currentPlannedEndLap(v *racestate.VehicleState) (int, bool) {
	if v.CurrentStint < 0 || v.CurrentStint >= len(v.Plan) {
		return 0, false
	}
	return v.Plan[v.CurrentStint].EndLap, true
}

// SetPitIntent is the per-vehicle strategy step the engine runs each tick
// (§2's control flow): within the pit-entry distance window and not
// already pitting, it evaluates ShouldBox and latches BoxThisLap. Once
// latched it is never cleared here — only the pit machine, on release,
// clears it.
func (s *Engine) SetPitIntent(r *rng.Source, track *trackmodel.Track, state *racestate.RaceState, v *racestate.VehicleState, aggression float64) {
	if v.BoxThisLap || v.IsInPit || !v.IsActive() {
		return
	}
	if !inPitEntryWindow(track, v.DistanceOnLap, s.config) {
		return
	}
	if ShouldBox(r, state, v, aggression, s.config) {
		v.BoxThisLap = true
	}
}

func inPitEntryWindow(track *trackmodel.Track, distanceOnLap float64, cfg *Config) bool {
	d := trackmodel.Mod(track.PitLane.EntryDistance-distanceOnLap, track.TotalDistance)
	return d >= cfg.PitEntryMinM && d <= cfg.PitEntryMaxM
}

// ChooseReleaseCompound implements §4.5's compound-on-release rule. It is
// called from the pit-stop state machine in racelogic, which owns
// invocation timing but delegates the compound decision here since §4.5
// names it as a StrategySystem responsibility.
func ChooseReleaseCompound(rainIntensity float64, v *racestate.VehicleState, lapsRemaining int) tyres.Compound {
	switch {
	case rainIntensity > 60:
		return tyres.Wet
	case rainIntensity > 10:
		return tyres.Intermediate
	}

	if v.CurrentStint+1 < len(v.Plan) {
		return v.Plan[v.CurrentStint+1].Compound
	}

	switch {
	case lapsRemaining < 15:
		return tyres.Soft
	case lapsRemaining < 30:
		return tyres.Medium
	default:
		return tyres.Hard
	}
}
