// internal/workers/matching/find-matching-programs/config.go
package findmatchingprograms

import "time"

type Config struct {
	CacheTTL      time.Duration
	Timeout       time.Duration
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:      5 * time.Minute,
		Timeout:       30 * time.Second,
		MaxCandidates: 500,
	}
}
