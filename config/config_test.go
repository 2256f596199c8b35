package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
data:
  airports_file: airports.txt
  flights_file: flights.txt
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, "file", cfg.Data.Source)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadConfig_Full(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
http:
  address: ":8000"
data:
  source: postgres
  reload_interval_seconds: 30
database:
  host: localhost
  port: 5432
  user: routes
  password: secret
  name: routes
  ssl_mode: disable
cache:
  driver: redis
  ttl_seconds: 5
redis:
  addr: localhost:6379
kafka:
  brokers: ["localhost:9092"]
  dataset_topic: routes.dataset
`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Data.ReloadInterval())
	assert.Equal(t, "host=localhost port=5432 user=routes password=secret dbname=routes sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "airroutes", cfg.Kafka.GroupID)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown source":     "data:\n  source: ftp\n",
		"file without paths": "data:\n  source: file\n",
		"unknown cache":      "data:\n  airports_file: a\n  flights_file: f\ncache:\n  driver: memcached\n",
		"bad yaml":           "data: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
