package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration sourced from the environment with
// an optional .env file for local development.
type Config struct {
	BackendURL      string `mapstructure:"BACKEND_URL"`
	BackendAPIKey   string `mapstructure:"BACKEND_API_KEY"`
	ActivitiesTable string `mapstructure:"ACTIVITIES_TABLE"`
	VolunteersTable string `mapstructure:"VOLUNTEERS_TABLE"`
	StateDir        string `mapstructure:"STATE_DIR"`
	DashboardAddr   string `mapstructure:"DASHBOARD_ADDR"`
	RefreshInterval string `mapstructure:"REFRESH_INTERVAL"`
	PruneOnReload   bool   `mapstructure:"PRUNE_ON_RELOAD"`
}

// Load reads configuration from a .env file (if present) and the
// process environment, applies defaults, and validates.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine; environment variables still apply.
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("BACKEND_URL", "")
	v.SetDefault("BACKEND_API_KEY", "")
	v.SetDefault("ACTIVITIES_TABLE", "Activitati")
	v.SetDefault("VOLUNTEERS_TABLE", "Voluntari")
	v.SetDefault("STATE_DIR", defaultStateDir())
	v.SetDefault("DASHBOARD_ADDR", "127.0.0.1:8790")
	v.SetDefault("REFRESH_INTERVAL", "1m")
	v.SetDefault("PRUNE_ON_RELOAD", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an http(s) URL")
	}
	if c.BackendAPIKey == "" {
		return fmt.Errorf("BACKEND_API_KEY is required")
	}
	if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
		return fmt.Errorf("REFRESH_INTERVAL must be a duration: %w", err)
	}
	return nil
}

// Refresh returns the dashboard refresh interval. Validation in Load
// guarantees the stored string parses.
func (c *Config) Refresh() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".volunteer-client"
	}
	return filepath.Join(base, "volunteer-client")
}
