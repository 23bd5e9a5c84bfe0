package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hirepulse/tadash/internal/tracker"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func countingLoader(calls *atomic.Int32) LoadFunc {
	return func(ctx context.Context) (*tracker.Dataset, error) {
		n := calls.Add(1)
		return &tracker.Dataset{Checksum: string(rune('a' + n - 1))}, nil
	}
}

func TestGetMemoisesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(countingLoader(&calls), time.Minute)
	c.now = clk.Now

	first, err := c.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	clk.Advance(30 * time.Second)
	second, _ := c.Get(t.Context())
	if first != second || calls.Load() != 1 {
		t.Fatalf("expected memoised dataset, calls = %d", calls.Load())
	}

	clk.Advance(31 * time.Second)
	third, _ := c.Get(t.Context())
	if third == first || calls.Load() != 2 {
		t.Errorf("expected reload after TTL, calls = %d", calls.Load())
	}
}

func TestDefaultTTL(t *testing.T) {
	if got := New(nil, 0).TTL(); got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestInvalidateAndReload(t *testing.T) {
	var calls atomic.Int32
	c := New(countingLoader(&calls), time.Hour)

	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Reload(t.Context()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestConcurrentGetSharesLoad(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := New(func(ctx context.Context) (*tracker.Dataset, error) {
		calls.Add(1)
		<-release
		return &tracker.Dataset{}, nil
	}, time.Hour)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGetServesStaleOnFailure(t *testing.T) {
	fail := false
	c := New(func(ctx context.Context) (*tracker.Dataset, error) {
		if fail {
			return nil, errors.New("export unreachable")
		}
		return &tracker.Dataset{Checksum: "ok"}, nil
	}, time.Hour)

	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}
	fail = true
	c.Invalidate()

	ds, err := c.Get(t.Context())
	if err != nil || ds.Checksum != "ok" {
		t.Errorf("Get = (%v, %v), want stale dataset", ds, err)
	}
	if _, err := c.Reload(t.Context()); err == nil {
		t.Error("Reload should surface the error")
	}
}

func TestGetErrorWithoutPrevious(t *testing.T) {
	c := New(func(ctx context.Context) (*tracker.Dataset, error) {
		return nil, tracker.ErrNoSources
	}, time.Hour)
	if _, err := c.Get(t.Context()); !errors.Is(err, tracker.ErrNoSources) {
		t.Errorf("err = %v", err)
	}
}

func TestOnLoadAndSubscribe(t *testing.T) {
	var calls atomic.Int32
	c := New(countingLoader(&calls), time.Hour)

	var events []LoadEvent
	c.OnLoad(func(ev LoadEvent) { events = append(events, ev) })

	ch, cancel := c.Subscribe()
	defer cancel()

	ds, err := c.Reload(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		if got != ds {
			t.Error("subscriber received a different dataset")
		}
	case <-time.After(time.Second):
		t.Fatal("no dataset published")
	}
	if len(events) != 1 || events[0].Dataset != ds || events[0].Err != nil {
		t.Errorf("events = %+v", events)
	}

	// A slow subscriber keeps only the latest dataset.
	c.Reload(t.Context())
	latest, _ := c.Reload(t.Context())
	if got := <-ch; got != latest {
		t.Error("expected latest dataset")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
}

func TestWatchInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tracker.csv")
	if err := os.WriteFile(p, []byte("meta\nStatus\nJoined\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	c := New(countingLoader(&calls), time.Hour)
	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}

	ctx, stop := context.WithCancel(t.Context())
	defer stop()
	if err := c.Watch(ctx, []string{p, "s3://bucket/ignored.csv"}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(p, []byte("meta\nStatus\nRejected\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.Get(t.Context())
		if calls.Load() > 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("cache was not invalidated after the source changed")
}

func TestWatchGlobSource(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "exports", "2024")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "jan.csv"), []byte("meta\nStatus\nJoined\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	c := New(countingLoader(&calls), time.Hour)
	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}

	ctx, stop := context.WithCancel(t.Context())
	defer stop()
	if err := c.Watch(ctx, []string{filepath.Join(dir, "exports", "**", "*.csv")}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Files outside the pattern are ignored.
	if err := os.WriteFile(filepath.Join(nested, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	c.Get(t.Context())
	if n := calls.Load(); n != 1 {
		t.Fatalf("loads after unrelated write = %d, want 1", n)
	}

	// A new export in an existing subdirectory invalidates.
	if err := os.WriteFile(filepath.Join(nested, "feb.csv"), []byte("meta\nStatus\nRejected\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.Get(t.Context())
		if calls.Load() > 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("cache was not invalidated after a matching export appeared")
}

func TestWatchGlobMissingBase(t *testing.T) {
	c := New(nil, time.Hour)
	err := c.Watch(t.Context(), []string{filepath.Join(t.TempDir(), "nope", "**", "*.csv")})
	if err == nil {
		t.Error("expected an error for a missing glob base directory")
	}
}

func TestWatchNoLocalSources(t *testing.T) {
	c := New(nil, time.Hour)
	if err := c.Watch(t.Context(), []string{"s3://bucket/a.csv"}); err != nil {
		t.Errorf("Watch = %v", err)
	}
}
