package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every variable Load consults so the host environment cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "LEDGER_PATH", "DASHBOARD_ADDR", "WOW_CLIENT_ID", "WOW_CLIENT_SECRET",
		"WOW_REGION", "WOW_LOCALE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  data_dir: "/tmp/wow/data"
  price_file: "prices.csv"
server:
  addr: ":9000"
blizzard:
  region: "us"
  locale: "en_US"
  timeout_sec: 10
  name_lookups_per_sec: 5
collector:
  top_n: 30
  timezone: "UTC"
  seed_items:
    122284: "WoW Token"
dashboard:
  release_date: "2026-03-02"
  recent_columns: 8
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/wow/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/wow/data")
	}
	if got := cfg.Storage.Path(cfg.Storage.PriceFile); got != "/tmp/wow/data/prices.csv" {
		t.Errorf("price path = %q, want %q", got, "/tmp/wow/data/prices.csv")
	}
	if cfg.Storage.VolumeFile != "market_volume.csv" {
		t.Errorf("Storage.VolumeFile = %q, want default", cfg.Storage.VolumeFile)
	}

	// -- Server --
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}

	// -- Blizzard --
	if got := cfg.Blizzard.BaseURL(); got != "https://us.api.blizzard.com" {
		t.Errorf("Blizzard.BaseURL() = %q", got)
	}
	if cfg.Blizzard.Timeout().Seconds() != 10 {
		t.Errorf("Blizzard.Timeout() = %v, want 10s", cfg.Blizzard.Timeout())
	}

	// -- Collector --
	if cfg.Collector.TopN != 30 {
		t.Errorf("Collector.TopN = %d, want 30", cfg.Collector.TopN)
	}
	if len(cfg.Collector.SeedItems) != 1 || cfg.Collector.SeedItems[122284] != "WoW Token" {
		t.Errorf("Collector.SeedItems = %v", cfg.Collector.SeedItems)
	}
	if cfg.Collector.TokenItemID != 122284 {
		t.Errorf("Collector.TokenItemID = %d, want 122284", cfg.Collector.TokenItemID)
	}

	// -- Dashboard / Logging --
	if cfg.Dashboard.RecentColumns != 8 {
		t.Errorf("Dashboard.RecentColumns = %d, want 8", cfg.Dashboard.RecentColumns)
	}
	if cfg.Dashboard.DefaultSelection != 3 {
		t.Errorf("Dashboard.DefaultSelection = %d, want 3", cfg.Dashboard.DefaultSelection)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "data")
	}
	if cfg.Blizzard.TokenURL != "https://oauth.battle.net/token" {
		t.Errorf("Blizzard.TokenURL = %q", cfg.Blizzard.TokenURL)
	}
	if got := cfg.Blizzard.BaseURL(); got != "https://kr.api.blizzard.com" {
		t.Errorf("Blizzard.BaseURL() = %q", got)
	}
	if cfg.Collector.TopN != 20 || cfg.Collector.Timezone != "Asia/Seoul" {
		t.Errorf("Collector = %+v", cfg.Collector)
	}
	if len(cfg.Collector.SeedItems) != 3 {
		t.Errorf("len(SeedItems) = %d, want 3", len(cfg.Collector.SeedItems))
	}
	if cfg.Blizzard.ClientID != "" {
		t.Errorf("Blizzard.ClientID = %q, want empty", cfg.Blizzard.ClientID)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  data_dir: "/original/data"
blizzard:
  region: "kr"
logging:
  level: "info"
`)

	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("WOW_CLIENT_ID", "env-id")
	t.Setenv("WOW_CLIENT_SECRET", "env-secret")
	t.Setenv("WOW_REGION", "eu")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Blizzard.ClientID != "env-id" || cfg.Blizzard.ClientSecret != "env-secret" {
		t.Errorf("credentials = %q/%q, want env values", cfg.Blizzard.ClientID, cfg.Blizzard.ClientSecret)
	}
	if got := cfg.Blizzard.BaseURL(); got != "https://eu.api.blizzard.com" {
		t.Errorf("Blizzard.BaseURL() = %q, want eu host", got)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "warn")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad release date", "dashboard:\n  release_date: \"03/02/2026\"\n"},
		{"negative rate", "blizzard:\n  name_lookups_per_sec: -1\n"},
		{"malformed yaml", "storage: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Error("Load() returned nil error, want validation failure")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("WOW_CLIENT_ID=dotenv-id\nWOW_REGION=tw\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WOW_REGION", "us")

	LoadDotEnv(filepath.Join(dir, "missing.env"), envPath)
	t.Cleanup(func() { os.Unsetenv("WOW_CLIENT_ID") })

	if got := os.Getenv("WOW_CLIENT_ID"); got != "dotenv-id" {
		t.Errorf("WOW_CLIENT_ID = %q, want %q", got, "dotenv-id")
	}
	if got := os.Getenv("WOW_REGION"); got != "us" {
		t.Errorf("WOW_REGION = %q, want existing value %q", got, "us")
	}
}
