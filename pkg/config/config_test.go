package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdir/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Charts.IdleTimeout.Std() != 600*time.Second {
		t.Errorf("IdleTimeout = %s", cfg.Charts.IdleTimeout)
	}
	if cfg.Charts.GCInterval.Std() != 600*time.Second {
		t.Errorf("GCInterval = %s", cfg.Charts.GCInterval)
	}
	if cfg.Charts.Store != StoreMemory {
		t.Errorf("Store = %q", cfg.Charts.Store)
	}
	if cfg.Server.Addr != ":8080" || !cfg.Cache.Enabled {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvRedisAddr, "")
	path := writeConfig(t, `
[server]
addr = ":9090"
read_timeout = "5s"

[charts]
idle_timeout = 120
gc_interval = "1m"
store = "file"
store_dir = "/var/lib/chartdir"

[redis]
db = 2

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout.Std() != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout.Std() != 30*time.Second {
		t.Errorf("unset key should keep its default: %s", cfg.Server.WriteTimeout)
	}
	if cfg.Charts.IdleTimeout.Std() != 2*time.Minute {
		t.Errorf("integer durations are seconds: %s", cfg.Charts.IdleTimeout)
	}
	if cfg.Charts.GCInterval.Std() != time.Minute {
		t.Errorf("GCInterval = %s", cfg.Charts.GCInterval)
	}
	if cfg.Charts.StoreDir != "/var/lib/chartdir" {
		t.Errorf("StoreDir = %q", cfg.Charts.StoreDir)
	}
	if cfg.Redis.DB != 2 || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if lvl, _ := cfg.LogLevel(); lvl != log.DebugLevel {
		t.Errorf("LogLevel = %v", lvl)
	}
	if cfg.Cache.Dir == "" {
		t.Error("Cache.Dir should be filled from XDG")
	}
}

func TestLoadNegativeInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[charts]\ngc_interval = -1\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Charts.GCInterval.Std() >= 0 {
		t.Errorf("GCInterval = %s, want negative", cfg.Charts.GCInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvRedisAddr, "redis.example:6380")
	cfg, err := Load(writeConfig(t, "[redis]\naddr = \"ignored:1\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.example:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[charts]\nidle = 5\n", "unknown keys: charts.idle"},
		{"bad store", "[charts]\nstore = \"mongo\"\n", "charts.store"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n", "parse"},
		{"syntax", "[server\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file error = %v", err)
	}

	// A missing file at the default location is fine.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load default: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("CacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("CacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/etc/xdg", appName, "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}
