package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Backend  BackendConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// BackendConfig holds the save pipeline settings.
type BackendConfig struct {
	PollIntervalMs   int `mapstructure:"poll_interval_ms"`
	WorkerIntervalMs int `mapstructure:"worker_interval_ms"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	OrderID        string `mapstructure:"order_id"`
	CatalogPath    string `mapstructure:"catalog_path"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// PollInterval is the delay between save status polls.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Backend.PollIntervalMs) * time.Millisecond
}

// WorkerInterval is how often the save worker checks for queued jobs.
func (c Config) WorkerInterval() time.Duration {
	return time.Duration(c.Backend.WorkerIntervalMs) * time.Millisecond
}

// Load reads configuration from file and env. Env var overrides use prefix
// ORDERDESK_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "orderdesk", "orderdesk.db"))
	v.SetDefault("backend.poll_interval_ms", 100)
	v.SetDefault("backend.worker_interval_ms", 50)
	v.SetDefault("ui.order_id", "")
	v.SetDefault("ui.catalog_path", "")
	v.SetDefault("ui.currency_symbol", "$")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ORDERDESK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "orderdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ORDERDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
