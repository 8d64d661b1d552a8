package registry

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/observability"
)

// DefaultIdleTimeout is how long a handle may stay untouched before the
// sweep reclaims it.
const DefaultIdleTimeout = 600 * time.Second

// Registry adds idle-timeout bookkeeping on top of a Store.
type Registry struct {
	store  Store
	idle   time.Duration
	now    func() time.Time
	logger *log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger sets the logger used for sweep messages.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New wraps store. Handles idle for longer than idle are reclaimed by GC.
func New(store Store, idle time.Duration, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		idle:   idle,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IdleTimeout returns the configured idle timeout.
func (r *Registry) IdleTimeout() time.Duration {
	return r.idle
}

// Create registers c and returns its handle.
func (r *Registry) Create(ctx context.Context, c *chart.Chart) (uint64, error) {
	id, err := r.store.Create(ctx, c, r.now())
	if err != nil {
		return 0, err
	}
	observability.Registry().OnCreate(ctx, id)
	return id, nil
}

// Use touches id and runs fn on its chart. Changes made by fn are kept.
func (r *Registry) Use(ctx context.Context, id uint64, fn func(*chart.Chart) error) error {
	return r.store.Update(ctx, id, r.now(), fn)
}

// Destroy frees id.
func (r *Registry) Destroy(ctx context.Context, id uint64) error {
	if err := r.store.Update(ctx, id, r.now(), func(*chart.Chart) error { return nil }); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	observability.Registry().OnDestroy(ctx, id)
	return nil
}

// Charts lists live handles, newest first.
func (r *Registry) Charts(ctx context.Context) ([]Entry, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	return entries, nil
}

// GC reclaims every handle idle for strictly longer than the idle timeout
// and returns the reclaimed ids in ascending order.
func (r *Registry) GC(ctx context.Context) ([]uint64, error) {
	start := time.Now()
	ids, err := r.store.Sweep(ctx, r.now().Add(-r.idle))
	for _, id := range ids {
		r.logger.Infof("GC: inactive chart %d", id)
	}
	observability.Registry().OnSweep(ctx, ids, time.Since(start))
	return ids, err
}

// Run sweeps every interval until ctx is cancelled. A non-positive
// interval disables the periodic sweep; Run then just waits for ctx.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		r.logger.Info("periodic GC disabled")
		<-ctx.Done()
		return nil
	}
	r.logger.Infof("scheduling GC every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.GC(ctx); err != nil {
				r.logger.Error("GC failed", "error", err)
			}
		}
	}
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}
