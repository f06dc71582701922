// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import "time"

type Config struct {
	Timeout time.Duration
	// MaxLimit caps the row limit a process instance may request.
	MaxLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		MaxLimit: 100,
	}
}
