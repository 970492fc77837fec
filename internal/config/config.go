// Package config provides pmdash configuration: a TOML file layered
// under environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all pmdash configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL string `toml:"base_url,omitempty" env:"PMDASH_API_URL"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	PageLimit int    `toml:"page_limit" env:"PMDASH_PAGE_LIMIT"`
	LogLevel  string `toml:"log_level" env:"PMDASH_LOG_LEVEL"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background refresher settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" env:"PMDASH_DAEMON_ADDR"`
	IntervalSecs int    `toml:"interval_secs" env:"PMDASH_DAEMON_INTERVAL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PageLimit: 10,
			LogLevel:  "warn",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8791",
			IntervalSecs: 60,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pmdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pmdash")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields defaults. A .env file in the working directory is honored.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config env: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
