package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/config"
)

// isolate points every XDG directory into a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(config.EnvRedisAddr, "")
	return dir
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"serve", "run", "exec", "charts", "gc", "commands", "cache", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, buildinfo.Short()) {
		t.Errorf("version output = %q, want %q", out, buildinfo.Short())
	}
}

func TestCommandsCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "commands")
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(command.Commands()) {
		t.Errorf("got %d commands, want %d", len(lines), len(command.Commands()))
	}
}

func TestBadConfig(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "", "--config", filepath.Join(dir, "missing.toml"), "version")
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestSharedStore(t *testing.T) {
	tests := []struct {
		configured string
		flag       string
		want       string
	}{
		{config.StoreMemory, "", config.StoreFile},
		{config.StoreRedis, "", config.StoreRedis},
		{config.StoreFile, "", config.StoreFile},
		{config.StoreMemory, config.StoreRedis, config.StoreRedis},
	}
	for _, tt := range tests {
		c := New(io.Discard, LogInfo)
		c.cfg.Charts.Store = tt.configured
		if got := c.sharedStore(tt.flag); got != tt.want {
			t.Errorf("sharedStore(%q) with %q configured = %q, want %q", tt.flag, tt.configured, got, tt.want)
		}
	}
}

func TestCompleteCommandNames(t *testing.T) {
	names, _ := completeCommandNames(nil, nil, "set")
	if len(names) == 0 {
		t.Fatal("no completions for \"set\"")
	}
	for _, n := range names {
		if !strings.HasPrefix(n, "set") {
			t.Errorf("completion %q does not start with \"set\"", n)
		}
	}
	if names, _ := completeCommandNames(nil, []string{"create"}, ""); names != nil {
		t.Errorf("completions after the command word = %v, want none", names)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "", "completion", shell)
		if err != nil {
			t.Errorf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "chartdir") {
			t.Errorf("completion %s output does not mention chartdir", shell)
		}
	}
}
