// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import "time"

type Config struct {
	Timeout time.Duration
	// DefaultSize applies when a request leaves pagination unset.
	DefaultSize int
	// MaxSize caps the page size a process instance may request.
	MaxSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		DefaultSize: 10,
		MaxSize:     50,
	}
}
