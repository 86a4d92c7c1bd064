// internal/workers/communication/notify-assignment/config.go
package notifyassignment

import "time"

type Config struct {
	FromEmail string
	AWSRegion string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
