package strategy

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the tunable knobs for the strategy system: plan generation,
// pit-window sensitivity, and the one-shot precompute worker pool. Unlike
// the rest of the engine (which is pure and seed-driven), these values are
// operational tuning, not race physics, so they are loaded from the
// environment the way an operator would tune a deployed service.
type Config struct {
	// Pre-race plan generation.
	JitterLaps        int     `json:"jitter_laps"`         // Default: 2
	StopWindowFrac    float64 `json:"stop_window_frac"`    // Default: 0.85 (midpoint of 0.8-0.9)
	AggressionSplit   float64 `json:"aggression_split"`    // Default: 60 (aggression threshold for weighted pick)
	CandidateCount    int     `json:"candidate_count"`     // Default: 4

	// In-race pit-window sensitivity.
	PitWindowLaps      int           `json:"pit_window_laps"`      // Default: 2 (the +/- lap window)
	UndercutBonus      float64       `json:"undercut_bonus"`       // Default: 0.3
	AggressionThreshold float64      `json:"aggression_threshold"` // Default: 60
	PitEntryMinM       float64       `json:"pit_entry_min_m"`      // Default: 50
	PitEntryMaxM       float64       `json:"pit_entry_max_m"`      // Default: 1000

	// Precompute worker pool (pre-race only, never inside the tick path).
	PrecomputeWorkers   int           `json:"precompute_workers"`   // Default: 4
	PrecomputeTimeout   time.Duration `json:"precompute_timeout"`   // Default: 5s
	MaxRequestsPerMinute int          `json:"max_requests_per_minute"` // Default: 120, throttles updateStrategy
	BurstLimit          int           `json:"burst_limit"`          // Default: 10

	// Plan cache.
	EnableCaching bool          `json:"enable_caching"` // Default: true
	CacheTTL      time.Duration `json:"cache_ttl"`      // Default: 5 minutes
	MaxCacheSize  int           `json:"max_cache_size"` // Default: 256 entries
}

// DefaultConfig returns sensible defaults, grounded on the values §4.5
// names explicitly (jitter, 0.8-0.9 stop window, aggression thresholds).
func DefaultConfig() *Config {
	return &Config{
		JitterLaps:      2,
		StopWindowFrac:  0.85,
		AggressionSplit: 60,
		CandidateCount:  4,

		PitWindowLaps:       2,
		UndercutBonus:       0.3,
		AggressionThreshold: 60,
		PitEntryMinM:        50,
		PitEntryMaxM:        1000,

		PrecomputeWorkers:    4,
		PrecomputeTimeout:    5 * time.Second,
		MaxRequestsPerMinute: 120,
		BurstLimit:           10,

		EnableCaching: true,
		CacheTTL:      5 * time.Minute,
		MaxCacheSize:  256,
	}
}

// LoadConfig starts from DefaultConfig and overlays any PITWALL_STRATEGY_*
// environment variables that are set, validating the result.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if err := overlayInt(&cfg.JitterLaps, "PITWALL_STRATEGY_JITTER_LAPS"); err != nil {
		return nil, err
	}
	if err := overlayFloat(&cfg.StopWindowFrac, "PITWALL_STRATEGY_STOP_WINDOW_FRAC"); err != nil {
		return nil, err
	}
	if err := overlayInt(&cfg.PitWindowLaps, "PITWALL_STRATEGY_PIT_WINDOW_LAPS"); err != nil {
		return nil, err
	}
	if err := overlayInt(&cfg.PrecomputeWorkers, "PITWALL_STRATEGY_PRECOMPUTE_WORKERS"); err != nil {
		return nil, err
	}
	if err := overlayInt(&cfg.MaxRequestsPerMinute, "PITWALL_STRATEGY_MAX_REQUESTS_PER_MINUTE"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayInt(dst *int, envVar string) error {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", envVar, err)
	}
	*dst = v
	return nil
}

func overlayFloat(dst *float64, envVar string) error {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", envVar, err)
	}
	*dst = v
	return nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.JitterLaps < 0 {
		return fmt.Errorf("jitter_laps cannot be negative")
	}
	if c.StopWindowFrac <= 0 || c.StopWindowFrac > 1 {
		return fmt.Errorf("stop_window_frac must be in (0,1]")
	}
	if c.CandidateCount <= 0 {
		return fmt.Errorf("candidate_count must be positive")
	}
	if c.PitWindowLaps < 0 {
		return fmt.Errorf("pit_window_laps cannot be negative")
	}
	if c.PitEntryMinM < 0 || c.PitEntryMaxM <= c.PitEntryMinM {
		return fmt.Errorf("pit entry window must satisfy 0 <= min < max")
	}
	if c.PrecomputeWorkers <= 0 {
		return fmt.Errorf("precompute_workers must be positive")
	}
	if c.MaxRequestsPerMinute <= 0 {
		return fmt.Errorf("max_requests_per_minute must be positive")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ToJSON serializes the configuration, e.g. for a diagnostics endpoint.
func (c *Config) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}
