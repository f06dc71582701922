// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Viper is package-global state, so every test starts from a clean slate.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
camunda:
  broker_address: "localhost:26500"
database:
  postgres:
    host: "localhost"
    port: 5432
    database: "grantmatch"
    user: "grantmatch"
  elasticsearch:
    addresses:
      - "http://localhost:9200"
  redis:
    address: "localhost:6379"
`

func TestLoadFromFile(t *testing.T) {
	resetViper(t)

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "grantmatch", cfg.Database.Postgres.Database)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	resetViper(t)

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "grantmatch-workers", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)

	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, 30000, cfg.Camunda.Timeout)
	assert.Equal(t, 30000, cfg.Camunda.RequestTimeout)

	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)

	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, 5, cfg.Database.Redis.MinIdleConns)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.InDelta(t, 0.3, cfg.Matching.DefaultRelevance, 0.0001)
	assert.Equal(t, 45, cfg.Matching.MinimumScore)
	assert.Equal(t, 300000, cfg.Matching.ProfileCacheTTL)
}

func TestLoadFromFile_WorkersInheritCamundaDefaults(t *testing.T) {
	resetViper(t)

	content := minimalConfig + `
workers:
  parse-match-request:
    enabled: true
  find-matching-programs:
    enabled: true
    max_jobs_active: 2
    timeout: 120000
`
	cfg, err := LoadFromFile(writeConfigFile(t, content))
	require.NoError(t, err)

	// Unset fields fall back to the Camunda-level values.
	pmr := cfg.Workers["parse-match-request"]
	assert.True(t, pmr.Enabled)
	assert.Equal(t, cfg.Camunda.MaxJobsActive, pmr.MaxJobsActive)
	assert.Equal(t, cfg.Camunda.Timeout, pmr.Timeout)

	// Explicit settings survive untouched.
	fmp := cfg.Workers["find-matching-programs"]
	assert.Equal(t, 2, fmp.MaxJobsActive)
	assert.Equal(t, 120000, fmp.Timeout)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	resetViper(t)
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	content := `
camunda:
  broker_address: "localhost:26500"
database:
  postgres:
    host: "localhost"
    port: 5432
    database: "grantmatch"
    user: "grantmatch"
    password: "${TEST_DB_PASSWORD}"
  elasticsearch:
    addresses:
      - "http://localhost:9200"
  redis:
    address: "localhost:6379"
`
	cfg, err := LoadFromFile(writeConfigFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_EnvOverridesEmptyValues(t *testing.T) {
	resetViper(t)
	t.Setenv("AWS_REGION", "ap-northeast-2")
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "ap-northeast-2", cfg.Notifications.AWS.Region)
	assert.Equal(t, "from-env", cfg.Database.Postgres.Password)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Camunda.BrokerAddress = "localhost:26500"
		cfg.Database.Postgres.Host = "localhost"
		cfg.Database.Postgres.Database = "grantmatch"
		cfg.Database.Postgres.User = "grantmatch"
		cfg.Database.Elasticsearch.URL = "http://localhost:9200"
		cfg.Database.Redis.Address = "localhost:6379"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing broker address",
			mutate:  func(cfg *Config) { cfg.Camunda.BrokerAddress = "" },
			wantErr: "camunda.broker_address",
		},
		{
			name:    "missing postgres host",
			mutate:  func(cfg *Config) { cfg.Database.Postgres.Host = "" },
			wantErr: "database.postgres.host",
		},
		{
			name: "missing elasticsearch",
			mutate: func(cfg *Config) {
				cfg.Database.Elasticsearch.URL = ""
				cfg.Database.Elasticsearch.Addresses = nil
			},
			wantErr: "database.elasticsearch",
		},
		{
			name:    "missing redis address",
			mutate:  func(cfg *Config) { cfg.Database.Redis.Address = "" },
			wantErr: "database.redis.address",
		},
		{
			name:    "relevance out of range",
			mutate:  func(cfg *Config) { cfg.Matching.DefaultRelevance = 1.5 },
			wantErr: "matching.default_relevance",
		},
		{
			name:    "minimum score out of range",
			mutate:  func(cfg *Config) { cfg.Matching.MinimumScore = 250 },
			wantErr: "matching.minimum_score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration(30000))
	assert.Equal(t, 300*time.Millisecond, GetDuration(300))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db.internal",
		Port:     5432,
		Database: "grantmatch",
		User:     "worker",
		Password: "pw",
		SSLMode:  "require",
	}

	dsn := p.GetDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=grantmatch")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	t.Run("url field wins", func(t *testing.T) {
		e := ElasticsearchConfig{URL: "http://es:9200", Addresses: []string{"http://other:9200"}}
		assert.Equal(t, "http://es:9200", e.GetURL())
	})

	t.Run("falls back to first address", func(t *testing.T) {
		e := ElasticsearchConfig{Addresses: []string{"http://a:9200", "http://b:9200"}}
		assert.Equal(t, "http://a:9200", e.GetURL())
	})

	t.Run("empty when nothing set", func(t *testing.T) {
		e := ElasticsearchConfig{}
		assert.Equal(t, "", e.GetURL())
	})
}
