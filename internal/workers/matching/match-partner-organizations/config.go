// internal/workers/matching/match-partner-organizations/config.go
package matchpartnerorganizations

import "time"

type Config struct {
	Timeout       time.Duration
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		MaxCandidates: 200,
	}
}
