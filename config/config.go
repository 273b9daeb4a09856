/*
Package config loads server configuration.

PURPOSE:
  Configuration comes from three layers, later layers winning:
    1. Defaults (this file)
    2. An optional YAML file
    3. PERSONNEL_* environment variables

ENVIRONMENT VARIABLES:
  PERSONNEL_PORT          HTTP port
  PERSONNEL_DB            SQLite database path (":memory:" works)
  PERSONNEL_TIME_FUND     monthly hour fund for hourly-rate derivation
  PERSONNEL_CORS_ORIGINS  comma-separated allowed origins

TIME FUND:
  The default of 190.6 hours is the statutory monthly working-time fund
  used to derive hourly and overtime rates on movement notices.

SEE ALSO:
  - cmd/server/main.go: applies this at startup
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	TimeFund string `yaml:"time_fund"`

	CORS CORSConfig `yaml:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:     8080,
		DBPath:   "personnel.db",
		TimeFund: "190.6",
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (empty path or a missing file is fine) and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if _, err := decimal.NewFromString(cfg.TimeFund); err != nil {
		return Config{}, fmt.Errorf("invalid time_fund %q: %w", cfg.TimeFund, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PERSONNEL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("PERSONNEL_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PERSONNEL_TIME_FUND"); v != "" {
		cfg.TimeFund = v
	}
	if v := os.Getenv("PERSONNEL_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

// TimeFundDecimal returns the parsed time fund. Load validated it already.
func (c Config) TimeFundDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.TimeFund)
}
