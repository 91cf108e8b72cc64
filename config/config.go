// Package config provides configuration loading and validation for the
// analytics engine and its CLI host.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"schedule-analytics/models"
)

// EnvPrefix is prepended to every environment override, e.g.
// SCHEDULE_ANALYTICS_CONFLICT_DAILY_HOURS_THRESHOLD.
const EnvPrefix = "SCHEDULE_ANALYTICS_"

// Config holds every tunable of the engine. The numeric constants used by the
// overlap detector and the optimizer are inferred defaults, not fixed rules.
type Config struct {
	Conflict  ConflictConfig  `yaml:"conflict" envPrefix:"CONFLICT_"`
	Optimizer OptimizerConfig `yaml:"optimizer" envPrefix:"OPTIMIZER_"`
	Analytics AnalyticsConfig `yaml:"analytics" envPrefix:"ANALYTICS_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
}

// ConflictConfig tunes conflict classification.
type ConflictConfig struct {
	// DailyHoursThreshold is the scheduled hours per calendar day above which an employee is in overtime.
	DailyHoursThreshold float64 `yaml:"daily_hours_threshold" env:"DAILY_HOURS_THRESHOLD" validate:"gt=0,lte=24"`
	// UnderstaffedSeverity applies to non-critical requirements.
	UnderstaffedSeverity models.Severity `yaml:"understaffed_severity" env:"UNDERSTAFFED_SEVERITY" validate:"min=1,max=4"`
	// CriticalUnderstaffedSeverity applies to requirements flagged critical.
	CriticalUnderstaffedSeverity models.Severity `yaml:"critical_understaffed_severity" env:"CRITICAL_UNDERSTAFFED_SEVERITY" validate:"min=1,max=4"`
}

// OptimizerConfig holds the relative costs and factors used to rank suggestions.
type OptimizerConfig struct {
	ReassignCost        float64 `yaml:"reassign_cost" env:"REASSIGN_COST" validate:"gt=0"`
	TrainCost           float64 `yaml:"train_cost" env:"TRAIN_COST" validate:"gt=0"`
	HireCost            float64 `yaml:"hire_cost" env:"HIRE_COST" validate:"gt=0"`
	OvertimeCostPerHead float64 `yaml:"overtime_cost_per_head" env:"OVERTIME_COST_PER_HEAD" validate:"gt=0"`
	TrainImpactFactor   float64 `yaml:"train_impact_factor" env:"TRAIN_IMPACT_FACTOR" validate:"gt=0,lte=1"`
	HirePersistenceDays int     `yaml:"hire_persistence_days" env:"HIRE_PERSISTENCE_DAYS" validate:"min=1"`
}

// AnalyticsConfig controls report composition.
type AnalyticsConfig struct {
	// Timezone defines calendar-day boundaries (IANA name).
	Timezone        string `yaml:"timezone" env:"TIMEZONE" validate:"required,timezone"`
	MaxParallelDays int    `yaml:"max_parallel_days" env:"MAX_PARALLEL_DAYS" validate:"min=1,max=64"`
}

// LogConfig controls the logrus logger of the CLI host.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=text json"`
}

// MetricsConfig controls Prometheus exposure.
type MetricsConfig struct {
	Addr    string `yaml:"addr" env:"ADDR"`
	PushURL string `yaml:"push_url" env:"PUSH_URL" validate:"omitempty,url"`
	JobName string `yaml:"job_name" env:"JOB_NAME" validate:"required"`
}

// Default returns a valid configuration.
func Default() *Config {
	return &Config{
		Conflict: ConflictConfig{
			DailyHoursThreshold:          12,
			UnderstaffedSeverity:         models.SeverityLow,
			CriticalUnderstaffedSeverity: models.SeverityHigh,
		},
		Optimizer: OptimizerConfig{
			ReassignCost:        1,
			TrainCost:           3,
			HireCost:            10,
			OvertimeCostPerHead: 1.5,
			TrainImpactFactor:   0.5,
			HirePersistenceDays: 3,
		},
		Analytics: AnalyticsConfig{
			Timezone:        "UTC",
			MaxParallelDays: 8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			JobName: "schedule_analytics",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Location resolves the analytics timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config error: timezone %q: %w", c.Analytics.Timezone, err)
	}
	return loc, nil
}
