// ABOUTME: Trade journal configuration management with environment overrides.
// ABOUTME: Handles the JSON config file, .env loading, and the storage factory.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables that override the config file.
const (
	EnvDB             = "TRADEJOURNAL_DB"
	EnvDataDir        = "TRADEJOURNAL_DATA_DIR"
	EnvLogLevel       = "TRADEJOURNAL_LOG_LEVEL"
	EnvLegacyTimezone = "TRADEJOURNAL_LEGACY_TZ"
	EnvTimezone       = "TRADEJOURNAL_TZ"
	EnvDefaultTZ      = "TRADEJOURNAL_DEFAULT_TZ"
)

// Config stores trade journal configuration.
type Config struct {
	// DataDir is the root directory for data storage.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/tradejournal.
	DataDir string `json:"data_dir,omitempty"`

	// DBPath points at the database file directly, overriding DataDir.
	DBPath string `json:"db_path,omitempty"`

	// Timezone overrides the stored display timezone for this machine.
	Timezone string `json:"timezone,omitempty"`

	// LogLevel is a zerolog level name. Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// LegacyTimezone is assumed for trades recorded before timezones were tracked.
	LegacyTimezone string `json:"legacy_timezone,omitempty"`

	// DefaultTimezone seeds the stored default_timezone setting of a new journal.
	// Defaults to the legacy timezone. Existing journals keep their setting.
	DefaultTimezone string `json:"default_timezone,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the database file path.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return ExpandPath(c.DBPath)
	}
	if c.DataDir == "" {
		return storage.DefaultDBPath()
	}
	return filepath.Join(c.GetDataDir(), "journal.db")
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetLegacyTimezone returns the timezone backfilled onto historical trades.
func (c *Config) GetLegacyTimezone() string {
	if c.LegacyTimezone == "" {
		return storage.DefaultLegacyTimezone
	}
	return c.LegacyTimezone
}

// GetDefaultTimezone returns the zone a new journal's default_timezone is seeded with.
func (c *Config) GetDefaultTimezone() string {
	if c.DefaultTimezone == "" {
		return c.GetLegacyTimezone()
	}
	return c.DefaultTimezone
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// StorageOptions builds the options used to open the store.
func (c *Config) StorageOptions(log *zerolog.Logger) storage.Options {
	return storage.Options{
		Logger:          log,
		LegacyTimezone:  c.GetLegacyTimezone(),
		DefaultTimezone: c.GetDefaultTimezone(),
	}
}

// OpenStorage opens the SQLite journal. Unless skipMigrate is set the schema is
// brought to the latest version.
func (c *Config) OpenStorage(log *zerolog.Logger, skipMigrate bool) (*storage.DB, error) {
	opts := c.StorageOptions(log)
	opts.SkipMigrate = skipMigrate
	return storage.Open(c.GetDBPath(), opts)
}

// ApplyEnv overrides fields from TRADEJOURNAL_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLegacyTimezone); v != "" {
		c.LegacyTimezone = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvDefaultTZ); v != "" {
		c.DefaultTimezone = v
	}
}

// LoadDotEnv loads variables from .env files that exist. Missing files are ignored
// and variables already set in the environment win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "tradejournal", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(GetConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
