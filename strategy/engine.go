package strategy

import (
	"strconv"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
	"github.com/psybe/pitwall/tyres"
)

// Engine is the strategy system's facade: pre-race plan generation, the
// in-race box decision, and the rate limiter guarding external strategy
// channel updates. It holds no per-race mutable state of its own beyond
// its cache and limiter, both of which are safe to reuse across races.
type Engine struct {
	config      *Config
	planCache   *PlanCache
	rateLimiter *RateLimiter
}

// NewEngine builds a strategy Engine from config, or DefaultConfig() if
// config is nil.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:      config,
		planCache:   NewPlanCache(config),
		rateLimiter: NewRateLimiter(config.MaxRequestsPerMinute, config.BurstLimit),
	}
}

// Config returns the engine's tunables (the same values SetPitIntent and
// ShouldBox read internally).
func (s *Engine) Config() *Config { return s.config }

// AllowStrategyUpdate reports whether an external updateStrategy call may
// proceed right now (§6), throttled so a misbehaving client can't issue
// unlimited channel changes.
func (s *Engine) AllowStrategyUpdate() bool {
	return s.rateLimiter.Allow()
}

// ApplyStrategyUpdate mutates the named channel on a vehicle (§6):
// "pace" takes one of the three PaceMode values, "ers" one of the three
// ERSMode values, "pit" forces BoxThisLap. Unknown channels and
// unrecognized values are no-ops, matching §7's stance that gameplay edge
// cases are handled in place without propagation.
func (s *Engine) ApplyStrategyUpdate(v *racestate.VehicleState, channel, value string) {
	switch channel {
	case "pace":
		switch tyres.PaceMode(value) {
		case tyres.Conservative, tyres.Balanced, tyres.Aggressive:
			v.PaceMode = tyres.PaceMode(value)
		}
	case "ers":
		switch racestate.ERSMode(value) {
		case racestate.ERSHarvest, racestate.ERSBalanced, racestate.ERSDeploy:
			v.ERSMode = racestate.ERSMode(value)
		}
	case "pit":
		if value == "true" {
			v.BoxThisLap = true
		}
	}
}

// PlanFor returns a pre-race plan for driver, serving it from the cache
// when an equivalent driver/track/weather bucket has already been
// computed (drivers share a bucket when their aggression and tyre
// management both round to the same decile and the rain-probability
// wet/dry split agrees). A cache hit returns the stored plan unchanged and
// draws nothing from r, so drivers in the same bucket share one plan.
func (s *Engine) PlanFor(track *trackmodel.Track, driver *trackmodel.Driver, totalLaps int, rainProbability float64, r *rng.Source) []racestate.StrategyStint {
	key := planKey(track, driver, rainProbability)
	if cached, ok := s.planCache.Get(key); ok {
		return cached
	}
	plan := s.PlanPreRace(track, driver, totalLaps, rainProbability, r)
	s.planCache.Put(key, plan)
	return plan
}

// planKey identifies a cache slot for a pre-race plan.
func planKey(track *trackmodel.Track, d *trackmodel.Driver, rainProbability float64) string {
	aggressionBucket := int(d.Personality.Aggression / 10)
	mgmtBucket := int(d.Skill.TyreManagement / 10)
	wet := "dry"
	if rainProbability > 0.6 {
		wet = "wet"
	}
	return track.ID + "/" + wet + "/" + strconv.Itoa(aggressionBucket) + "/" + strconv.Itoa(mgmtBucket)
}
