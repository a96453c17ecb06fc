package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration shared by the collector, the web
// dashboard and the console.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Server    Server    `yaml:"server"`
	Blizzard  Blizzard  `yaml:"blizzard"`
	Collector Collector `yaml:"collector"`
	Dashboard Dashboard `yaml:"dashboard"`
	Logging   Logging   `yaml:"logging"`
}

// Storage holds paths for data persistence. File names are relative to
// DataDir unless absolute.
type Storage struct {
	DataDir     string `yaml:"data_dir" env:"DATA_DIR"`
	CatalogFile string `yaml:"catalog_file"`
	PriceFile   string `yaml:"price_file"`
	VolumeFile  string `yaml:"volume_file"`
	ArchiveDir  string `yaml:"archive_dir"`
	LedgerPath  string `yaml:"ledger_path" env:"LEDGER_PATH"`
}

// Server holds the dashboard listener configuration.
type Server struct {
	Addr string `yaml:"addr" env:"DASHBOARD_ADDR"`
}

// Blizzard holds credentials and endpoints for the Battle.net game data API.
// The client id and secret are never read from YAML.
type Blizzard struct {
	ClientID          string  `yaml:"-" env:"WOW_CLIENT_ID"`
	ClientSecret      string  `yaml:"-" env:"WOW_CLIENT_SECRET"`
	ClientIDFile      string  `yaml:"client_id_file"`
	SecretFile        string  `yaml:"secret_file"`
	Region            string  `yaml:"region" env:"WOW_REGION"`
	Locale            string  `yaml:"locale" env:"WOW_LOCALE"`
	TokenURL          string  `yaml:"token_url"`
	APIBaseURL        string  `yaml:"api_base_url"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	NameLookupsPerSec float64 `yaml:"name_lookups_per_sec"`
}

// Collector controls a single collection cycle.
type Collector struct {
	TopN        int              `yaml:"top_n"`
	Timezone    string           `yaml:"timezone"`
	TokenItemID int64            `yaml:"token_item_id"`
	SeedItems   map[int64]string `yaml:"seed_items"`
}

// Dashboard controls the render surfaces.
type Dashboard struct {
	Title            string `yaml:"title"`
	ReleaseDate      string `yaml:"release_date"`
	DefaultSelection int    `yaml:"default_selection"`
	RecentColumns    int    `yaml:"recent_columns"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, fills defaults,
// applies environment variable overrides and validates the result. A missing
// file is not an error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	applyDefaults(cfg)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Path resolves a storage file name against DataDir.
func (s Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// Timeout returns the HTTP timeout for API calls.
func (b Blizzard) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// BaseURL returns the game data API root, derived from the region unless
// configured explicitly.
func (b Blizzard) BaseURL() string {
	if b.APIBaseURL != "" {
		return strings.TrimRight(b.APIBaseURL, "/")
	}
	return "https://" + strings.ToLower(b.Region) + ".api.blizzard.com"
}

// Validate rejects configurations that cannot drive a collection cycle or a
// dashboard.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must not be empty")
	}
	if c.Collector.TopN < 0 {
		return fmt.Errorf("collector.top_n must be >= 0, got %d", c.Collector.TopN)
	}
	if c.Blizzard.NameLookupsPerSec <= 0 {
		return fmt.Errorf("blizzard.name_lookups_per_sec must be > 0, got %v", c.Blizzard.NameLookupsPerSec)
	}
	if _, err := time.Parse("2006-01-02", c.Dashboard.ReleaseDate); err != nil {
		return fmt.Errorf("dashboard.release_date: %w", err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}
