// internal/workers/triage/send-triage-alert/config.go
package sendtriagealert

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
