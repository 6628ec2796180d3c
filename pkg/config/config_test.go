package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/pkg/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.PbRL.Hyperparameters.NumPairs)
	assert.Equal(t, 20, cfg.PbRL.Hyperparameters.TrajectoryLen)
	assert.Equal(t, 50, cfg.PbRL.CheckpointEvery)
	assert.Equal(t, 10000, cfg.PbRL.EvalPairs)
	assert.Equal(t, types.StoreBackendFilesystem, cfg.Storage.Backend)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "tape" }},
		{"minio without endpoint", func(c *Config) { c.Storage.Backend = types.StoreBackendMinIO }},
		{"zero pairs", func(c *Config) { c.PbRL.Hyperparameters.NumPairs = 0 }},
		{"zero trajectory len", func(c *Config) { c.PbRL.Hyperparameters.TrajectoryLen = 0 }},
		{"zero epochs", func(c *Config) { c.PbRL.Hyperparameters.Epochs = 0 }},
		{"zero learning rate", func(c *Config) { c.PbRL.Hyperparameters.LearningRate = 0 }},
		{"zero checkpoint interval", func(c *Config) { c.PbRL.CheckpointEvery = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9999
pbrl:
  num_pairs: 77
  trajectory_len: 9
storage:
  backend: filesystem
  filesystem:
    root: /tmp/openpbrl-test
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 77, cfg.PbRL.Hyperparameters.NumPairs)
	assert.Equal(t, 9, cfg.PbRL.Hyperparameters.TrajectoryLen)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000, cfg.PbRL.Hyperparameters.Epochs)
	assert.Equal(t, "/tmp/openpbrl-test", cfg.Storage.Filesystem.Root)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Default().Database
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=openpbrl")
	assert.Contains(t, dsn, "sslmode=disable")
}
