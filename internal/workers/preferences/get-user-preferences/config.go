// internal/workers/preferences/get-user-preferences/config.go
package getuserpreferences

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
