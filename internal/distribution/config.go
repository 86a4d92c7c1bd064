// internal/distribution/config.go
package distribution

import (
	"fmt"
	"math"
	"time"
)

const (
	// weightSumTolerance bounds the allowed drift of the five weights from 1.0.
	weightSumTolerance = 0.01

	leadsPerUserMin = 1
	leadsPerUserMax = 100
)

// Weights holds the relative importance of each scoring factor. The five
// values must sum to 1.0 within weightSumTolerance.
type Weights struct {
	Territory   float64 `json:"territory"`
	Capacity    float64 `json:"capacity"`
	Expertise   float64 `json:"expertise"`
	Performance float64 `json:"performance"`
	Fairness    float64 `json:"fairness"`
}

func (w Weights) Sum() float64 {
	return w.Territory + w.Capacity + w.Expertise + w.Performance + w.Fairness
}

// Config controls one distribution call. Construct via DefaultConfig or
// NewConfig; a Config from either is guaranteed valid, and Distribute does
// not re-check it.
type Config struct {
	Weights            Weights
	MaxLeadsPerUser    int
	FairnessSaturation time.Duration
}

// Overrides carries caller-supplied settings merged over the default
// config. Nil fields keep the default. Weights replace as a whole: a
// partial weight set cannot satisfy the sum constraint on its own.
type Overrides struct {
	Weights            *Weights
	MaxLeadsPerUser    *int
	FairnessSaturation *time.Duration
}

// DefaultConfig returns the stock configuration used when a caller supplies
// no override.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Territory:   0.30,
			Capacity:    0.25,
			Expertise:   0.20,
			Performance: 0.15,
			Fairness:    0.10,
		},
		MaxLeadsPerUser:    50,
		FairnessSaturation: 24 * time.Hour,
	}
}

// NewConfig merges the overrides over the default configuration and
// validates the outcome once, up front.
func NewConfig(o Overrides) (*Config, error) {
	cfg := DefaultConfig()
	if o.Weights != nil {
		cfg.Weights = *o.Weights
	}
	if o.MaxLeadsPerUser != nil {
		cfg.MaxLeadsPerUser = *o.MaxLeadsPerUser
	}
	if o.FairnessSaturation != nil {
		cfg.FairnessSaturation = *o.FairnessSaturation
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{FactorTerritory, c.Weights.Territory},
		{FactorCapacity, c.Weights.Capacity},
		{FactorExpertise, c.Weights.Expertise},
		{FactorPerformance, c.Weights.Performance},
		{FactorFairness, c.Weights.Fairness},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("weight %q must be within [0,1], got %v", w.name, w.value)
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0 within %v, got %v", weightSumTolerance, sum)
	}
	if c.MaxLeadsPerUser < leadsPerUserMin || c.MaxLeadsPerUser > leadsPerUserMax {
		return fmt.Errorf("maxLeadsPerUser must be within [%d,%d], got %d",
			leadsPerUserMin, leadsPerUserMax, c.MaxLeadsPerUser)
	}
	if c.FairnessSaturation <= 0 {
		return fmt.Errorf("fairnessSaturation must be positive, got %v", c.FairnessSaturation)
	}
	return nil
}
