// internal/workers/ratings/submit-doctor-rating/config.go
package submitdoctorrating

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
