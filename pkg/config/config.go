// Package config loads chartdir settings from a TOML file.
//
// Every key is optional; [Default] documents the values used when a key or
// the whole file is absent. The file lives at
// $XDG_CONFIG_HOME/chartdir/config.toml unless a path is given explicitly:
//
//	[server]
//	addr = ":8080"
//	script_dir = "/srv/charts"
//
//	[charts]
//	idle_timeout = 600   # seconds, or "10m"
//	gc_interval = "5m"
//	store = "redis"
//
//	[redis]
//	addr = "cache.internal:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdir/pkg/errors"
)

const appName = "chartdir"

// Store backends for chart handles.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// EnvRedisAddr overrides [RedisConfig.Addr] when set.
const EnvRedisAddr = "CHARTDIR_REDIS_ADDR"

// Config is the complete configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Charts ChartsConfig `toml:"charts"`
	Redis  RedisConfig  `toml:"redis"`
	Paths  PathsConfig  `toml:"paths"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// ScriptDir holds <name>.chart scripts served under /run/{name}.
	// Empty disables script pages.
	ScriptDir string `toml:"script_dir"`
}

// ChartsConfig configures the handle registry.
type ChartsConfig struct {
	IdleTimeout Duration `toml:"idle_timeout"`
	// GCInterval <= 0 disables the periodic sweep.
	GCInterval Duration `toml:"gc_interval"`
	Store      string   `toml:"store"`
	StoreDir   string   `toml:"store_dir"`
}

// RedisConfig configures the redis store and cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// PathsConfig holds the roots that file names in commands resolve against.
type PathsConfig struct {
	ImageDir  string `toml:"image_dir"`
	FontDir   string `toml:"font_dir"`
	OutputDir string `toml:"output_dir"`
}

// CacheConfig configures the rendered-artifact cache.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
		},
		Charts: ChartsConfig{
			IdleTimeout: Duration(600 * time.Second),
			GCInterval:  Duration(600 * time.Second),
			Store:       StoreMemory,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "chartdir:",
		},
		Paths: PathsConfig{
			ImageDir:  ".",
			OutputDir: ".",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(time.Hour),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the file at path over the defaults. An empty path reads the
// default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults apply.
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}

	cfg.applyEnv()
	if err := cfg.fillDirs(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Redis.Addr = addr
	}
}

func (c *Config) fillDirs() error {
	if c.Charts.StoreDir == "" {
		dir, err := DataDir()
		if err != nil {
			return err
		}
		c.Charts.StoreDir = filepath.Join(dir, "charts")
	}
	if c.Cache.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return err
		}
		c.Cache.Dir = dir
	}
	return nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Charts.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "charts.store must be one of memory, file, redis (got %q)", c.Charts.Store)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Charts.IdleTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "charts.idle_timeout must not be negative")
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	return lvl, nil
}

// Duration is a time.Duration that decodes from either an integer number of
// seconds or a Go duration string.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats d like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*d = Duration(time.Duration(x) * time.Second)
	case float64:
		*d = Duration(x * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %v (%T)", v, v)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/chartdir/config.toml.
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/chartdir/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory using XDG standard (~/.local/share/chartdir/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
