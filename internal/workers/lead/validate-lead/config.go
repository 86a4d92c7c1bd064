// internal/workers/lead/validate-lead/config.go
package validatelead

import "time"

// Validation is in-memory; the timeout only bounds the broker round trips
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
