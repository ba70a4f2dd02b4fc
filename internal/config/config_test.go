// ABOUTME: Tests for trade journal configuration management.
// ABOUTME: Covers load, save, defaults, environment overrides, and path expansion.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/tradejournal/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvDataDir, EnvLogLevel, EnvLegacyTimezone, EnvTimezone, EnvDefaultTZ} {
		t.Setenv(k, "")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}

	got := cfg.GetDataDir()
	if got != storage.DataDir() {
		t.Errorf("GetDataDir() = %q, want %q", got, storage.DataDir())
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/tradejournal-test"}
	if got := cfg.GetDataDir(); got != "/tmp/tradejournal-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/tradejournal-test")
	}
}

func TestGetDBPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"data dir", Config{DataDir: "/data"}, filepath.Join("/data", "journal.db")},
		{"explicit db", Config{DataDir: "/data", DBPath: "/elsewhere/j.db"}, "/elsewhere/j.db"},
		{"tilde db", Config{DBPath: "~/j.db"}, filepath.Join(home, "j.db")},
		{"default", Config{}, storage.DefaultDBPath()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetDBPath(); got != tt.want {
				t.Errorf("GetDBPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetLogLevel(); got != "info" {
		t.Errorf("GetLogLevel() = %q, want info", got)
	}
	if got := cfg.GetLegacyTimezone(); got != storage.DefaultLegacyTimezone {
		t.Errorf("GetLegacyTimezone() = %q, want %q", got, storage.DefaultLegacyTimezone)
	}
	if got := cfg.GetDefaultTimezone(); got != storage.DefaultLegacyTimezone {
		t.Errorf("GetDefaultTimezone() = %q, want %q", got, storage.DefaultLegacyTimezone)
	}

	cfg = &Config{LegacyTimezone: "Europe/Berlin"}
	if got := cfg.GetDefaultTimezone(); got != "Europe/Berlin" {
		t.Errorf("GetDefaultTimezone() = %q, want legacy Europe/Berlin", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/journal", filepath.Join(home, "data/journal")},
		{"data/journal", "data/journal"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.DataDir != "" || cfg.DBPath != "" {
		t.Errorf("Expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		DataDir:  "/tmp/journal-data",
		Timezone: "Europe/London",
		LogLevel: "debug",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := (&Config{DataDir: "/from/file", LogLevel: "warn"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv(EnvDataDir, "/from/env")
	t.Setenv(EnvDB, "/from/env/custom.db")
	t.Setenv(EnvLegacyTimezone, "Europe/Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want /from/env", cfg.DataDir)
	}
	if cfg.GetDBPath() != "/from/env/custom.db" {
		t.Errorf("GetDBPath() = %q, want /from/env/custom.db", cfg.GetDBPath())
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn from file", cfg.LogLevel)
	}
	if cfg.GetLegacyTimezone() != "Europe/Berlin" {
		t.Errorf("GetLegacyTimezone() = %q, want Europe/Berlin", cfg.GetLegacyTimezone())
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvLogLevel)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvLogLevel+"=debug\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })

	if got := os.Getenv(EnvLogLevel); got != "debug" {
		t.Errorf("%s = %q, want debug", EnvLogLevel, got)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	if err := (&Config{}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "tradejournal")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "tradejournal")
	_ = os.MkdirAll(configDir, 0755)
	_ = os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "tradejournal", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorage(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	repo, err := cfg.OpenStorage(nil, false)
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "journal.db")); os.IsNotExist(err) {
		t.Error("Expected journal.db to be created")
	}
}

func TestOpenStorageSeedsDefaultTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDefaultTZ, "Europe/London")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	cfg.DataDir = t.TempDir()

	repo, err := cfg.OpenStorage(nil, false)
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer repo.Close()

	got, err := repo.DefaultTimezone(context.Background())
	if err != nil {
		t.Fatalf("DefaultTimezone() failed: %v", err)
	}
	if got != "Europe/London" {
		t.Errorf("DefaultTimezone() = %q, want Europe/London", got)
	}
}

func TestOpenStorageSkipMigrate(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}

	repo, err := cfg.OpenStorage(nil, true)
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer repo.Close()

	v, err := repo.Migrator().Version(context.Background())
	if err != nil {
		t.Fatalf("Version() failed: %v", err)
	}
	if v != 0 {
		t.Errorf("Version() = %d, want 0 on an unmigrated journal", v)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
