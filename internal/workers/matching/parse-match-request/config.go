// internal/workers/matching/parse-match-request/config.go
package parsematchrequest

import "time"

type Config struct {
	Timeout             time.Duration
	DefaultLimit        int
	MaxLimit            int
	DefaultMinimumScore int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             5 * time.Second,
		DefaultLimit:        3,
		MaxLimit:            45,
		DefaultMinimumScore: 45,
	}
}
