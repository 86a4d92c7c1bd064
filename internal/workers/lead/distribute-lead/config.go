// internal/workers/lead/distribute-lead/config.go
package distributelead

import (
	"time"

	"lead-distribution-workers/internal/common/config"
	"lead-distribution-workers/internal/distribution"
)

type Config struct {
	Timeout      time.Duration
	PoolCacheTTL time.Duration
	// Overrides tunes the startup distribution config. The zero value keeps
	// the engine defaults.
	Overrides distribution.Overrides
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		PoolCacheTTL: 30 * time.Second,
	}
}

// ConfigFromApp builds the worker config from the application configuration.
// Settings left unset in the app config fall through to the engine defaults.
func ConfigFromApp(appCfg *config.Config) *Config {
	cfg := LoadConfig()
	if appCfg == nil {
		return cfg
	}

	if wc, ok := appCfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}

	dist := appCfg.Distribution
	if dist.PoolCacheTTLSeconds > 0 {
		cfg.PoolCacheTTL = time.Duration(dist.PoolCacheTTLSeconds) * time.Second
	}
	if dist.HasWeights() {
		cfg.Overrides.Weights = &distribution.Weights{
			Territory:   dist.Weights.Territory,
			Capacity:    dist.Weights.Capacity,
			Expertise:   dist.Weights.Expertise,
			Performance: dist.Weights.Performance,
			Fairness:    dist.Weights.Fairness,
		}
	}
	if dist.MaxLeadsPerUser > 0 {
		maxLeads := dist.MaxLeadsPerUser
		cfg.Overrides.MaxLeadsPerUser = &maxLeads
	}
	if dist.FairnessSaturationHours > 0 {
		saturation := time.Duration(dist.FairnessSaturationHours) * time.Hour
		cfg.Overrides.FairnessSaturation = &saturation
	}

	return cfg
}
