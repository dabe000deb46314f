package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the statsbench workload driver configuration. The
// statistics library itself takes no configuration; everything here shapes
// the synthetic engine workload and its reporting.
type Config struct {
	Workload WorkloadConfig `yaml:"workload" mapstructure:"workload"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// WorkloadConfig shapes the synthetic storage-engine traffic.
type WorkloadConfig struct {
	Workers            int           `yaml:"workers" mapstructure:"workers"`
	Duration           time.Duration `yaml:"duration" mapstructure:"duration"`
	ReadRatio          float64       `yaml:"read_ratio" mapstructure:"read_ratio"`
	MultigetBatch      int           `yaml:"multiget_batch" mapstructure:"multiget_batch"`
	ValueSizeMin       int           `yaml:"value_size_min" mapstructure:"value_size_min"`
	ValueSizeMax       int           `yaml:"value_size_max" mapstructure:"value_size_max"`
	CompactionInterval time.Duration `yaml:"compaction_interval" mapstructure:"compaction_interval"`
}

// ReportConfig holds reporting cadence and verbosity.
type ReportConfig struct {
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
	DumpHistograms bool          `yaml:"dump_histograms" mapstructure:"dump_histograms"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the default workload configuration.
func DefaultConfig() *Config {
	return &Config{
		Workload: WorkloadConfig{
			Workers:            8,
			Duration:           30 * time.Second,
			ReadRatio:          0.8,
			MultigetBatch:      16,
			ValueSizeMin:       64,
			ValueSizeMax:       16 * 1024,
			CompactionInterval: 5 * time.Second,
		},
		Report: ReportConfig{
			Interval:       5 * time.Second,
			DumpHistograms: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a file and environment variables,
// starting from the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("statsbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/statsbench")
		v.AddConfigPath("/etc/statsbench")
	}

	v.SetEnvPrefix("STATSBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file.
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workload.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if c.Workload.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	if c.Workload.ReadRatio < 0 || c.Workload.ReadRatio > 1 {
		return fmt.Errorf("read ratio must be within [0, 1], got %g", c.Workload.ReadRatio)
	}

	if c.Workload.MultigetBatch < 1 {
		return fmt.Errorf("multiget batch must be at least 1")
	}

	if c.Workload.ValueSizeMin < 1 || c.Workload.ValueSizeMax < c.Workload.ValueSizeMin {
		return fmt.Errorf("invalid value size range [%d, %d]",
			c.Workload.ValueSizeMin, c.Workload.ValueSizeMax)
	}

	if c.Workload.CompactionInterval <= 0 {
		return fmt.Errorf("compaction interval must be positive")
	}

	if c.Report.Interval <= 0 {
		return fmt.Errorf("report interval must be positive")
	}

	return nil
}
