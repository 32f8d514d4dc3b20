// Package config loads runtime settings from the environment, an optional .env file and an
// optional YAML file, in increasing order of precedence for the YAML keys that are set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type PricingConfig struct {
	Steps       int     `yaml:"steps"`
	Parallelism int     `yaml:"parallelism"`
	Rate        float64 `yaml:"rate"`
}

type SimulationConfig struct {
	Paths      int     `yaml:"paths"`
	Workers    int     `yaml:"workers"`
	Seed       uint64  `yaml:"seed"`
	Confidence float64 `yaml:"confidence"`
}

type SweepConfig struct {
	Workers  int  `yaml:"workers"`
	Progress bool `yaml:"progress"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Decimals  int32  `yaml:"decimals"`
}

type MarketDataConfig struct {
	TradierToken   string `yaml:"tradier_token"`
	TradierBaseURL string `yaml:"tradier_base_url"`
}

type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	AppToken string `yaml:"app_token"`
}

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Simulation SimulationConfig `yaml:"simulation"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Report     ReportConfig     `yaml:"report"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Slack      SlackConfig      `yaml:"slack"`
}

// Default builds a config from environment variables, falling back to built-in values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      getEnv("QFIN_LOG_LEVEL", "info"),
			Format:     getEnv("QFIN_LOG_FORMAT", "text"),
			File:       getEnv("QFIN_LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("QFIN_LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("QFIN_LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("QFIN_LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvBool("QFIN_LOG_COMPRESS", false),
		},
		Pricing: PricingConfig{
			Steps:       getEnvInt("QFIN_STEPS", 100),
			Parallelism: getEnvInt("QFIN_PARALLELISM", 1),
			Rate:        getEnvFloat("QFIN_RATE", 0.05),
		},
		Simulation: SimulationConfig{
			Paths:      getEnvInt("QFIN_SIM_PATHS", 100000),
			Workers:    getEnvInt("QFIN_SIM_WORKERS", 8),
			Seed:       uint64(getEnvInt("QFIN_SIM_SEED", 0)),
			Confidence: getEnvFloat("QFIN_SIM_CONFIDENCE", 0.95),
		},
		Sweep: SweepConfig{
			Workers:  getEnvInt("QFIN_SWEEP_WORKERS", 0),
			Progress: getEnvBool("QFIN_SWEEP_PROGRESS", true),
		},
		Report: ReportConfig{
			OutputDir: getEnv("QFIN_OUTPUT_DIR", "."),
			Decimals:  int32(getEnvInt("QFIN_DECIMALS", 4)),
		},
		MarketData: MarketDataConfig{
			TradierToken:   getEnv("TRADIER_KEY", ""),
			TradierBaseURL: getEnv("TRADIER_BASE_URL", "https://api.tradier.com/v1"),
		},
		Slack: SlackConfig{
			BotToken: getEnv("SLACK_BOT_TOKEN", ""),
			AppToken: getEnv("SLACK_APP_TOKEN", ""),
		},
	}
}

// Load reads .env if present, builds the environment defaults and overlays the YAML file at
// path. An empty path skips the YAML step; a missing .env is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	switch {
	case c.Pricing.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidConfig, c.Pricing.Steps)
	case c.Pricing.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidConfig, c.Pricing.Parallelism)
	case c.Simulation.Paths < 1:
		return fmt.Errorf("%w: simulation paths must be at least 1, got %d", ErrInvalidConfig, c.Simulation.Paths)
	case !(c.Simulation.Confidence > 0 && c.Simulation.Confidence < 1):
		return fmt.Errorf("%w: confidence must be in (0, 1), got %v", ErrInvalidConfig, c.Simulation.Confidence)
	case c.Sweep.Workers < 0:
		return fmt.Errorf("%w: sweep workers must be non-negative, got %d", ErrInvalidConfig, c.Sweep.Workers)
	case c.Report.Decimals < 0 || c.Report.Decimals > 12:
		return fmt.Errorf("%w: decimals must be in [0, 12], got %d", ErrInvalidConfig, c.Report.Decimals)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
