package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdir/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Ran 12 commands (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports observability events at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetCommandHooks(h)
	observability.SetRenderHooks(h)
	observability.SetRegistryHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnCommand(_ context.Context, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("command", "name", name, "duration", d, "error", err)
		return
	}
	h.logger.Debug("command", "name", name, "duration", d)
}

func (h *logHooks) OnRenderStart(context.Context, string, string) {}

func (h *logHooks) OnRenderComplete(_ context.Context, kind, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render", "kind", kind, "format", format, "bytes", size, "duration", d, "error", err)
}

func (h *logHooks) OnCreate(_ context.Context, id uint64) {
	h.logger.Debug("handle created", "id", id)
}

func (h *logHooks) OnDestroy(_ context.Context, id uint64) {
	h.logger.Debug("handle destroyed", "id", id)
}

func (h *logHooks) OnSweep(_ context.Context, reclaimed []uint64, d time.Duration) {
	h.logger.Debug("sweep", "reclaimed", len(reclaimed), "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
