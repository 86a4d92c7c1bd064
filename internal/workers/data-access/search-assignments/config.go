// internal/workers/data-access/search-assignments/config.go
package searchassignments

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "lead-assignments",
		Timeout:   30 * time.Second,
	}
}
