// Package registry tracks live chart handles and reclaims idle ones.
//
// A handle is a positive integer mapped to a [chart.Chart]. Every command
// that addresses a chart goes through [Registry.Use], which touches the
// handle's access time before running. A periodic sweep ([Registry.Run])
// frees every handle left untouched for longer than the idle timeout.
//
// # Stores
//
// Handles live in a [Store]:
//   - memory: one process, the default for the HTTP host
//   - file: JSON files guarded by an inter-process lock, so consecutive CLI
//     invocations share handles
//   - redis: shared by several hosts behind a load balancer
//
// Ids start at 1 and are never reused for the life of a store.
package registry

import (
	"context"
	"time"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// Entry describes one live handle.
type Entry struct {
	ID         uint64    `json:"id"`
	AccessTime time.Time `json:"access_time"`
}

// Store holds chart handles. Implementations serialize every operation.
type Store interface {
	// Create stores c under a fresh id with access time now.
	Create(ctx context.Context, c *chart.Chart, now time.Time) (uint64, error)

	// Update sets the access time of id to now, then runs fn on its chart
	// and persists the result. The access time is kept even when fn fails.
	Update(ctx context.Context, id uint64, now time.Time, fn func(*chart.Chart) error) error

	// Delete removes id.
	Delete(ctx context.Context, id uint64) error

	// List returns every live handle in no particular order.
	List(ctx context.Context) ([]Entry, error)

	// Sweep removes every handle last accessed before cutoff and returns
	// the removed ids in ascending order.
	Sweep(ctx context.Context, cutoff time.Time) ([]uint64, error)

	// Close releases resources held by the store.
	Close() error
}

// record is the persisted form of a handle.
type record struct {
	ID         uint64       `json:"id"`
	AccessTime time.Time    `json:"access_time"`
	Chart      *chart.Chart `json:"chart"`
}

// ErrChartNotFound builds the error returned for a missing or reclaimed
// handle.
func ErrChartNotFound() error {
	return errors.New(errors.ErrCodeChartNotFound, "Invalid or expired chart object")
}
