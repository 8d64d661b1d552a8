package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	chartErrors "github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("test completed")

	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Errorf("progress.done() output = %q", buf.String())
	}
}

func TestInstallHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	installHooks(newLogger(&buf, log.DebugLevel))

	ctx := context.Background()
	observability.Command().OnCommand(ctx, "create", time.Millisecond, nil)
	observability.Command().OnCommand(ctx, "setsize", time.Millisecond, errors.New("boom"))
	observability.Registry().OnSweep(ctx, []uint64{1, 2}, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"create", "boom", "reclaimed=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatError(t *testing.T) {
	err := chartErrors.New(chartErrors.ErrCodeChartNotFound, "chart not found")
	got := FormatError(err)
	for _, want := range []string{"CHART_NOT_FOUND", "chart not found"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatError() = %q, missing %q", got, want)
		}
	}
	if got := FormatError(errors.New("plain")); !strings.Contains(got, "plain") {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
