// Package cli implements the chartdir command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
	"github.com/matzehuels/chartdir/pkg/cache"
	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/config"
	"github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/fonts"
	"github.com/matzehuels/chartdir/pkg/registry"
	"github.com/matzehuels/chartdir/pkg/render"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the configuration and applies its log level unless
// --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else if lvl, err := cfg.LogLevel(); err == nil {
		c.SetLogLevel(lvl)
	}
	installHooks(c.Logger)
	return nil
}

// =============================================================================
// Interpreter Factory
// =============================================================================

// session bundles what one CLI invocation opens. Close releases it.
type session struct {
	interp *command.Interp
	reg    *registry.Registry
	closer []func() error
}

func (s *session) Close() error {
	var first error
	for i := len(s.closer) - 1; i >= 0; i-- {
		if err := s.closer[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// open builds the registry, renderer and interpreter from the config.
// store overrides the configured store backend when not empty.
func (c *CLI) open(ctx context.Context, store string, noCache bool) (*session, error) {
	cfg := c.cfg
	s := &session{}

	var rdb *redis.Client
	redisClient := func() (*redis.Client, error) {
		if rdb != nil {
			return rdb, nil
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := cache.RetryWithBackoff(ctx, func() error {
			return cache.Retryable(client.Ping(ctx).Err())
		})
		if err != nil {
			client.Close()
			return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Redis.Addr)
		}
		rdb = client
		s.closer = append(s.closer, client.Close)
		return rdb, nil
	}

	if store == "" {
		store = cfg.Charts.Store
	}
	idle := cfg.Charts.IdleTimeout.Std()
	var st registry.Store
	switch store {
	case config.StoreFile:
		fs, err := registry.NewFileStore(cfg.Charts.StoreDir)
		if err != nil {
			return nil, err
		}
		st = fs
	case config.StoreRedis:
		client, err := redisClient()
		if err != nil {
			return nil, err
		}
		// Keys outlive the idle timeout so the sweep, not redis, reclaims
		// handles and logs them.
		rs, err := registry.NewRedisStore(ctx, client, cfg.Redis.Prefix, 2*idle)
		if err != nil {
			s.Close()
			return nil, err
		}
		st = rs
	default:
		st = registry.NewMemoryStore()
	}
	s.reg = registry.New(st, idle, registry.WithLogger(c.Logger))
	s.closer = append(s.closer, s.reg.Close)

	var artifacts cache.Cache = cache.NewNullCache()
	switch {
	case noCache || !cfg.Cache.Enabled:
	case store == config.StoreRedis:
		client, err := redisClient()
		if err != nil {
			s.Close()
			return nil, err
		}
		artifacts = cache.NewRedisCache(client, cfg.Redis.Prefix+"artifact:")
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("artifact cache disabled", "error", err)
		} else {
			artifacts = fc
			s.closer = append(s.closer, fc.Close)
		}
	}

	renderer := render.New(render.Options{
		ImageDir: cfg.Paths.ImageDir,
		Fonts:    fonts.NewLoader(cfg.Paths.FontDir),
		Cache:    artifacts,
		Keyer:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version),
		TTL:      cfg.Cache.TTL.Std(),
		Logger:   c.Logger,
	})
	s.interp = command.New(command.Options{
		Registry:  s.reg,
		Renderer:  renderer,
		OutputDir: cfg.Paths.OutputDir,
		Logger:    c.Logger,
	})
	return s, nil
}
