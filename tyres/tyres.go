// Package tyres holds the static compound table and the pure wear/grip
// functions that §4.2 of the spec describes. Nothing here touches race
// state; every function takes its inputs explicitly so it stays trivially
// testable and reusable from both physics and strategy.
package tyres

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Compound is a tagged tyre formulation: slicks (soft/medium/hard) or rain
// tyres (intermediate/wet).
type Compound string

const (
	Soft         Compound = "soft"
	Medium       Compound = "medium"
	Hard         Compound = "hard"
	Intermediate Compound = "intermediate"
	Wet          Compound = "wet"
)

// PaceMode is a driving-style modifier that feeds both physics and wear.
type PaceMode string

const (
	Conservative PaceMode = "conservative"
	Balanced     PaceMode = "balanced"
	Aggressive   PaceMode = "aggressive"
)

// Spec is the static per-compound table entry.
type Spec struct {
	BasePaceDelta   float64 // seconds relative to the reference lap, lower is faster
	BaseWearRate    float64 // %/lap baseline, before track/pace multipliers
	Grip            float64 // dry grip coefficient at zero wear
	OptimalTempMin  float64
	OptimalTempMax  float64
	RainPerformance float64 // relative grip retention in the wet
}

// Table is the static compound database from §4.2.
var Table = map[Compound]Spec{
	Soft:         {BasePaceDelta: 0.0, BaseWearRate: 1.8, Grip: 1.08, OptimalTempMin: 90, OptimalTempMax: 110, RainPerformance: 0.3},
	Medium:       {BasePaceDelta: 0.4, BaseWearRate: 1.2, Grip: 1.0, OptimalTempMin: 85, OptimalTempMax: 105, RainPerformance: 0.35},
	Hard:         {BasePaceDelta: 0.8, BaseWearRate: 0.75, Grip: 0.93, OptimalTempMin: 80, OptimalTempMax: 100, RainPerformance: 0.4},
	Intermediate: {BasePaceDelta: 2.5, BaseWearRate: 1.0, Grip: 0.78, OptimalTempMin: 40, OptimalTempMax: 70, RainPerformance: 0.9},
	Wet:          {BasePaceDelta: 4.5, BaseWearRate: 0.6, Grip: 0.65, OptimalTempMin: 25, OptimalTempMax: 55, RainPerformance: 1.0},
}

// WearRate computes the instantaneous wear accumulation rate (%/lap
// equivalent) for a compound given the track's degradation factor, the
// driver's current pace mode, and the current accumulated wear.
func WearRate(compound Compound, trackDegFactor float64, pace PaceMode, currentWear float64) float64 {
	spec := Table[compound]
	rate := spec.BaseWearRate * trackDegFactor

	switch pace {
	case Aggressive:
		rate *= 1.3
	case Conservative:
		rate *= 0.7
	}

	if currentWear > 80 {
		rate *= 1.2
	} else if currentWear > 60 {
		rate *= 1.1
	}

	return rate
}

// GripFactor computes the dry-adjusted, wear-adjusted, water-adjusted grip
// multiplier for a compound. It is floored at 0.1 so a fully worn tyre in
// the worst conditions never reaches zero grip (which would make speed
// targets degenerate).
func GripFactor(compound Compound, wear, waterDepthMM float64) float64 {
	spec := Table[compound]
	grip := spec.Grip * wearPenalty(wear) * waterMultiplier(compound, waterDepthMM)
	return Clamp(grip, 0.1, spec.Grip*1.5)
}

// wearPenalty is the three-piece cumulative-loss curve from §4.2:
// 0-40% wear costs up to 2% grip, 40-70% up to 7% cumulative, 70-100% up to
// 22% cumulative (the "cliff").
func wearPenalty(wear float64) float64 {
	wear = Clamp(wear, 0, 100)

	var loss float64
	switch {
	case wear <= 40:
		loss = (wear / 40) * 0.02
	case wear <= 70:
		loss = 0.02 + ((wear-40)/30)*0.05
	default:
		loss = 0.07 + ((wear-70)/30)*0.15
	}
	return 1 - loss
}

// waterMultiplier is the compound-specific response to standing water.
// Slicks lose grip exponentially as water builds; intermediates peak in a
// bell curve around 1.5mm (their design window is 0.5-2.5mm); wets are a
// sigmoid plateau that still punishes genuinely dry running.
func waterMultiplier(compound Compound, waterDepthMM float64) float64 {
	water := waterDepthMM
	if water < 0 {
		water = 0
	}

	switch compound {
	case Intermediate:
		// Bell curve centered at 1.5mm; the optimal window (0.5-2.5mm)
		// stays above ~0.77.
		d := water - 1.5
		return 0.55 + 0.45*math.Exp(-d*d/1.4)
	case Wet:
		// Sigmoid: punished below ~1mm of water, full performance by ~3mm.
		return 0.5 + 0.5/(1+math.Exp(-2*(water-1.8)))
	default: // slicks
		return math.Exp(-water * 1.8)
	}
}

// Clamp restricts v to [lo, hi] for any ordered numeric type.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
