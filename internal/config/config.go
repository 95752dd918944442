// Package config loads the tarmac configuration from
// ~/.tarmac/config.yaml with TARMAC_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ScoringWeights are the tunable stand scoring weights.
type ScoringWeights struct {
	SizeFit      float64 `mapstructure:"size_fit"`
	Jetway       float64 `mapstructure:"jetway"`
	Distance     float64 `mapstructure:"distance"`
	Availability float64 `mapstructure:"availability"`
}

// Prediction configures the occupancy prediction client.
type Prediction struct {
	Endpoint               string        `mapstructure:"endpoint"`
	Timeout                time.Duration `mapstructure:"timeout"`
	MaxRetries             int           `mapstructure:"max_retries"`
	CacheTTL               time.Duration `mapstructure:"cache_ttl"`
	UseMock                bool          `mapstructure:"use_mock"`
	DefaultDurationMinutes int           `mapstructure:"default_duration_minutes"`
}

// Config is the tarmac runtime configuration.
type Config struct {
	AirportICAO string `mapstructure:"airport_icao"`

	Scoring             ScoringWeights `mapstructure:"scoring"`
	SaturationThreshold float64        `mapstructure:"saturation_threshold"`

	AllocateRetries      int `mapstructure:"allocate_retries"`
	BatchParallelism     int `mapstructure:"batch_parallelism"`
	DelayAlertMinutes    int `mapstructure:"delay_alert_minutes"`
	ItemTimeoutSeconds   int `mapstructure:"item_timeout_seconds"`
	SyncIntervalMinutes  int `mapstructure:"sync_interval_minutes"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`

	Prediction Prediction `mapstructure:"prediction"`

	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("airport_icao", "DXXX")
	v.SetDefault("scoring.size_fit", 0.4)
	v.SetDefault("scoring.jetway", 0.3)
	v.SetDefault("scoring.distance", 0.2)
	v.SetDefault("scoring.availability", 0.1)
	v.SetDefault("saturation_threshold", 0.85)
	v.SetDefault("allocate_retries", 3)
	v.SetDefault("batch_parallelism", 10)
	v.SetDefault("delay_alert_minutes", 30)
	v.SetDefault("item_timeout_seconds", 30)
	v.SetDefault("sync_interval_minutes", 5)
	v.SetDefault("sweep_interval_minutes", 10)
	v.SetDefault("prediction.endpoint", "http://localhost:8001/api/v1/model/occupation/predict")
	v.SetDefault("prediction.timeout", 30*time.Second)
	v.SetDefault("prediction.max_retries", 3)
	v.SetDefault("prediction.cache_ttl", 5*time.Minute)
	v.SetDefault("prediction.use_mock", true)
	v.SetDefault("prediction.default_duration_minutes", 90)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("log_level", "info")
}

// Load reads the configuration from the given directory (empty = home),
// applying defaults and TARMAC_* environment overrides. A missing
// config file is not an error: defaults apply.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".tarmac")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TARMAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with all defaults and no file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// ItemTimeout returns the per-item ingestion timeout.
func (c *Config) ItemTimeout() time.Duration {
	return time.Duration(c.ItemTimeoutSeconds) * time.Second
}

// SyncInterval returns the flight sync period.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}

// SweepInterval returns the recall sweep period.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
