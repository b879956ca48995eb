package strategy

import (
	"sync"

	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/rng"
	"github.com/psybe/pitwall/trackmodel"
)

// planJob is one driver's pre-race plan request.
type planJob struct {
	index  int
	driver *trackmodel.Driver
}

// planResult pairs a computed plan back to its driver's slot.
type planResult struct {
	index int
	plan  []racestate.StrategyStint
}

// PrecomputePlans computes every driver's pre-race stint plan using a
// worker pool (§5 permits concurrency only at one-shot pre-race
// initialization; this is the one place the strategy system takes
// advantage of that, grounded on the same worker-pool shape the teacher's
// analysis manager used for its background request queue). Each worker
// draws from its own RNG stream seeded off the shared race seed offset by
// driver index, so the result does not depend on goroutine scheduling
// order — only on (seed, driverIndex), which keeps pre-race setup
// reproducible even though it runs concurrently.
func (s *Engine) PrecomputePlans(track *trackmodel.Track, drivers []trackmodel.Driver, totalLaps int, rainProbability float64, seed uint32) [][]racestate.StrategyStint {
	jobs := make(chan planJob, len(drivers))
	results := make(chan planResult, len(drivers))

	workers := s.config.PrecomputeWorkers
	if workers > len(drivers) {
		workers = len(drivers)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				r := rng.New(seed + uint32(job.index)*2654435761)
				plan := s.PlanPreRace(track, job.driver, totalLaps, rainProbability, r)
				results <- planResult{index: job.index, plan: plan}
			}
		}()
	}

	for i := range drivers {
		jobs <- planJob{index: i, driver: &drivers[i]}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	plans := make([][]racestate.StrategyStint, len(drivers))
	for res := range results {
		plans[res.index] = res.plan
	}
	return plans
}
