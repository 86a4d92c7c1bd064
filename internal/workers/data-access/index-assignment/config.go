// internal/workers/data-access/index-assignment/config.go
package indexassignment

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "lead-assignments",
		Timeout:   10 * time.Second,
	}
}
