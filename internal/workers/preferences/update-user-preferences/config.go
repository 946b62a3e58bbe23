// internal/workers/preferences/update-user-preferences/config.go
package updateuserpreferences

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
