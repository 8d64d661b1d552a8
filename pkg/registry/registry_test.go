package registry

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.New(chart.KindXY, 400, 300)
	if err != nil {
		t.Fatalf("chart.New: %v", err)
	}
	return c
}

// stores returns a constructor per backend. Redis runs only when
// CHARTDIR_TEST_REDIS names a server.
func stores(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	m := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		},
	}
	if addr := os.Getenv("CHARTDIR_TEST_REDIS"); addr != "" {
		m["redis"] = func(t *testing.T) Store {
			client := redis.NewClient(&redis.Options{Addr: addr})
			t.Cleanup(func() { client.Close() })
			prefix := "chartdir-test:" + strings.ReplaceAll(t.Name(), "/", ":") + ":"
			ctx := context.Background()
			iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
			s, err := NewRedisStore(ctx, client, prefix, time.Hour)
			if err != nil {
				t.Fatalf("NewRedisStore: %v", err)
			}
			return s
		}
	}
	return m
}

func TestRegistryLifecycle(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clk := newClock()
			r := New(open(t), 10*time.Minute, WithClock(clk.now))
			defer r.Close()

			id1, err := r.Create(ctx, newChart(t))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			id2, err := r.Create(ctx, newChart(t))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if id1 != 1 || id2 != 2 {
				t.Fatalf("ids = %d, %d, want 1, 2", id1, id2)
			}

			err = r.Use(ctx, id1, func(c *chart.Chart) error {
				c.AddTitle(chart.NewTitle("hello"))
				return nil
			})
			if err != nil {
				t.Fatalf("Use: %v", err)
			}
			err = r.Use(ctx, id1, func(c *chart.Chart) error {
				if len(c.Titles) != 1 || c.Titles[0].Text != "hello" {
					t.Errorf("titles = %+v, want one title %q", c.Titles, "hello")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Use: %v", err)
			}

			if err := r.Destroy(ctx, id2); err != nil {
				t.Fatalf("Destroy: %v", err)
			}
			if err := r.Destroy(ctx, id2); !errors.Is(err, errors.ErrCodeChartNotFound) {
				t.Errorf("second Destroy err = %v, want CHART_NOT_FOUND", err)
			}

			id3, err := r.Create(ctx, newChart(t))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if id3 != 3 {
				t.Errorf("id after destroy = %d, want 3 (ids are never reused)", id3)
			}

			entries, err := r.Charts(ctx)
			if err != nil {
				t.Fatalf("Charts: %v", err)
			}
			if len(entries) != 2 || entries[0].ID != 3 || entries[1].ID != 1 {
				t.Errorf("Charts = %+v, want ids [3 1]", entries)
			}
		})
	}
}

func TestRegistryUseMissing(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			r := New(open(t), time.Minute)
			defer r.Close()

			called := false
			err := r.Use(context.Background(), 42, func(*chart.Chart) error {
				called = true
				return nil
			})
			if !errors.Is(err, errors.ErrCodeChartNotFound) {
				t.Fatalf("err = %v, want CHART_NOT_FOUND", err)
			}
			if errors.UserMessage(err) != "Invalid or expired chart object" {
				t.Errorf("message = %q", errors.UserMessage(err))
			}
			if called {
				t.Error("fn called for missing handle")
			}
		})
	}
}

func TestRegistryUseErrorKeepsTouch(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clk := newClock()
			r := New(open(t), 10*time.Minute, WithClock(clk.now))
			defer r.Close()

			id, _ := r.Create(ctx, newChart(t))
			clk.advance(9 * time.Minute)

			want := errors.New(errors.ErrCodeInvalidInput, "boom")
			if err := r.Use(ctx, id, func(*chart.Chart) error { return want }); err != want {
				t.Fatalf("Use err = %v, want %v", err, want)
			}

			clk.advance(9 * time.Minute)
			ids, err := r.GC(ctx)
			if err != nil {
				t.Fatalf("GC: %v", err)
			}
			if len(ids) != 0 {
				t.Errorf("GC reclaimed %v, want nothing (handle was touched)", ids)
			}
		})
	}
}

func TestRegistryGC(t *testing.T) {
	tests := []struct {
		name    string
		idleFor time.Duration
		want    bool
	}{
		{"fresh", 0, false},
		{"just under", 10*time.Minute - time.Second, false},
		{"exactly at timeout", 10 * time.Minute, false},
		{"over", 10*time.Minute + time.Second, true},
	}

	for name, open := range stores(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				ctx := context.Background()
				clk := newClock()
				var buf bytes.Buffer
				r := New(open(t), 10*time.Minute, WithClock(clk.now), WithLogger(log.New(&buf)))
				defer r.Close()

				id, err := r.Create(ctx, newChart(t))
				if err != nil {
					t.Fatalf("Create: %v", err)
				}
				clk.advance(tt.idleFor)

				ids, err := r.GC(ctx)
				if err != nil {
					t.Fatalf("GC: %v", err)
				}
				got := len(ids) == 1 && ids[0] == id
				if got != tt.want {
					t.Fatalf("GC reclaimed %v, want reclaimed=%v", ids, tt.want)
				}
				logged := strings.Contains(buf.String(), "GC: inactive chart 1")
				if logged != tt.want {
					t.Errorf("log = %q, want GC message=%v", buf.String(), tt.want)
				}
				err = r.Use(ctx, id, func(*chart.Chart) error { return nil })
				if tt.want && !errors.Is(err, errors.ErrCodeChartNotFound) {
					t.Errorf("Use after GC err = %v, want CHART_NOT_FOUND", err)
				}
				if !tt.want && err != nil {
					t.Errorf("Use err = %v", err)
				}
			})
		}
	}
}

func TestRegistryGCOrder(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	r := New(NewMemoryStore(), time.Minute, WithClock(clk.now))

	for i := 0; i < 5; i++ {
		if _, err := r.Create(ctx, newChart(t)); err != nil {
			t.Fatal(err)
		}
	}
	clk.advance(2 * time.Minute)
	// Touching 3 keeps it alive.
	if err := r.Use(ctx, 3, func(*chart.Chart) error { return nil }); err != nil {
		t.Fatal(err)
	}

	ids, err := r.GC(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 2, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("GC = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("GC = %v, want %v", ids, want)
		}
	}
}

func TestFileStoreShared(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	now := time.Now()
	id, err := a.Create(ctx, newChart(t), now)
	if err != nil {
		t.Fatal(err)
	}
	err = b.Update(ctx, id, now, func(c *chart.Chart) error {
		return c.SetSize(640, 480)
	})
	if err != nil {
		t.Fatalf("Update via second store: %v", err)
	}
	err = a.Update(ctx, id, now, func(c *chart.Chart) error {
		if c.Width != 640 || c.Height != 480 {
			t.Errorf("size = %dx%d, want 640x480", c.Width, c.Height)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	next, err := b.Create(ctx, newChart(t), now)
	if err != nil {
		t.Fatal(err)
	}
	if next != id+1 {
		t.Errorf("second store allocated %d, want %d", next, id+1)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	for _, interval := range []time.Duration{0, 10 * time.Millisecond} {
		r := New(NewMemoryStore(), time.Minute)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, interval) }()

		time.Sleep(30 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run(%s) = %v, want nil", interval, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("Run(%s) did not return after cancel", interval)
		}
	}
}

func TestRunSweeps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := newClock()
	r := New(NewMemoryStore(), time.Minute, WithClock(clk.now))
	if _, err := r.Create(ctx, newChart(t)); err != nil {
		t.Fatal(err)
	}
	clk.advance(time.Hour)

	go r.Run(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := r.Charts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("periodic sweep did not reclaim the idle handle")
}
