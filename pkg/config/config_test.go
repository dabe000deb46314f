package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Workload.Workers)
	assert.Equal(t, 0.8, cfg.Workload.ReadRatio)
	assert.True(t, cfg.Report.DumpHistograms)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Workload.Workers = 0 },
			errMsg: "workers",
		},
		{
			name:   "negative duration",
			mutate: func(c *Config) { c.Workload.Duration = -time.Second },
			errMsg: "duration",
		},
		{
			name:   "read ratio above one",
			mutate: func(c *Config) { c.Workload.ReadRatio = 1.5 },
			errMsg: "read ratio",
		},
		{
			name:   "zero multiget batch",
			mutate: func(c *Config) { c.Workload.MultigetBatch = 0 },
			errMsg: "multiget batch",
		},
		{
			name: "inverted value size range",
			mutate: func(c *Config) {
				c.Workload.ValueSizeMin = 1024
				c.Workload.ValueSizeMax = 64
			},
			errMsg: "value size range",
		},
		{
			name:   "zero compaction interval",
			mutate: func(c *Config) { c.Workload.CompactionInterval = 0 },
			errMsg: "compaction interval",
		},
		{
			name:   "zero report interval",
			mutate: func(c *Config) { c.Report.Interval = 0 },
			errMsg: "report interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Workload.Workers, cfg.Workload.Workers)
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsbench.yaml")

	original := DefaultConfig()
	original.Workload.Workers = 32
	original.Workload.ReadRatio = 0.5
	original.Report.Interval = 2 * time.Second
	require.NoError(t, original.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, loaded.Workload.Workers)
	assert.Equal(t, 0.5, loaded.Workload.ReadRatio)
	assert.Equal(t, 2*time.Second, loaded.Report.Interval)
}

func TestLoadConfig_InvalidFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsbench.yaml")

	bad := DefaultConfig()
	bad.Workload.Workers = 0
	require.NoError(t, bad.SaveConfig(path))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
