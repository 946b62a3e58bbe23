// internal/workers/ratings/get-doctor-ratings/config.go
package getdoctorratings

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
