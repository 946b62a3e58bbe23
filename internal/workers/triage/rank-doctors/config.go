// internal/workers/triage/rank-doctors/config.go
package rankdoctors

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
