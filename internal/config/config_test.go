package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.PageLimit != 10 {
		t.Fatalf("PageLimit = %d, want 10", cfg.General.PageLimit)
	}
	if cfg.General.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.General.LogLevel)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("Theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
	if cfg.Daemon.Addr != "127.0.0.1:8791" {
		t.Fatalf("Daemon.Addr = %q, want default", cfg.Daemon.Addr)
	}
	if cfg.API.BaseURL != "" {
		t.Fatalf("API.BaseURL = %q, want empty (client falls back)", cfg.API.BaseURL)
	}
}

func TestLoad_FileValuesLayeredUnderEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "pmdash")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `[api]
base_url = "https://pm.example.com"

[general]
page_limit = 25
log_level = "debug"

[appearance]
theme = "tokyo-night"
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://pm.example.com" {
		t.Fatalf("BaseURL = %q, want file value", cfg.API.BaseURL)
	}
	if cfg.General.PageLimit != 25 {
		t.Fatalf("PageLimit = %d, want 25", cfg.General.PageLimit)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Fatalf("Theme = %q, want tokyo-night", cfg.Appearance.Theme)
	}

	// Environment wins over the file.
	t.Setenv("PMDASH_API_URL", "https://override.example.com")
	t.Setenv("PMDASH_PAGE_LIMIT", "50")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Fatalf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.General.PageLimit != 50 {
		t.Fatalf("PageLimit = %d, want env override 50", cfg.General.PageLimit)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("Exists() = true before Save")
	}

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://pm.example.com"
	cfg.General.PageLimit = 20
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL {
		t.Fatalf("BaseURL = %q, want %q", got.API.BaseURL, cfg.API.BaseURL)
	}
	if got.General.PageLimit != 20 {
		t.Fatalf("PageLimit = %d, want 20", got.General.PageLimit)
	}
}
