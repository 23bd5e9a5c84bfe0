// Package cache memoises the classified tracker dataset for a short TTL.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hirepulse/tadash/internal/tracker"
)

// DefaultTTL is how long a loaded dataset is served before reloading.
const DefaultTTL = 60 * time.Second

// LoadFunc produces a fresh dataset.
type LoadFunc func(ctx context.Context) (*tracker.Dataset, error)

// LoadEvent describes one completed load attempt.
type LoadEvent struct {
	Started  time.Time
	Duration time.Duration
	Dataset  *tracker.Dataset
	Err      error
}

// Cache serves a dataset until it is older than the TTL. Concurrent callers
// that find it stale share a single reload.
type Cache struct {
	load LoadFunc
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	ds       *tracker.Dataset
	loadedAt time.Time

	group singleflight.Group

	hookMu sync.RWMutex
	hooks  []func(LoadEvent)

	subMu  sync.Mutex
	subs   map[int]chan *tracker.Dataset
	nextID int
}

// New creates a cache around load. A non-positive ttl uses DefaultTTL.
func New(load LoadFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		load: load,
		ttl:  ttl,
		now:  time.Now,
		subs: make(map[int]chan *tracker.Dataset),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the memoised dataset, reloading it when stale. If the reload
// fails and an earlier dataset exists, the earlier one is returned.
func (c *Cache) Get(ctx context.Context) (*tracker.Dataset, error) {
	c.mu.RLock()
	ds, at := c.ds, c.loadedAt
	c.mu.RUnlock()
	if ds != nil && c.now().Sub(at) < c.ttl {
		return ds, nil
	}
	fresh, err := c.refresh(ctx)
	if err != nil && ds != nil {
		log.Printf("cache: reload failed, serving previous dataset: %v", err)
		return ds, nil
	}
	return fresh, err
}

// Reload discards the memoised dataset and loads a fresh one.
func (c *Cache) Reload(ctx context.Context) (*tracker.Dataset, error) {
	c.Invalidate()
	return c.refresh(ctx)
}

// Invalidate marks the dataset stale. The next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Peek returns the last loaded dataset without triggering a load.
func (c *Cache) Peek() *tracker.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds
}

// OnLoad registers fn to run after every load attempt, successful or not.
func (c *Cache) OnLoad(fn func(LoadEvent)) {
	c.hookMu.Lock()
	c.hooks = append(c.hooks, fn)
	c.hookMu.Unlock()
}

// Subscribe returns a channel that receives each freshly loaded dataset.
// Slow subscribers only see the latest one. Call cancel to unsubscribe.
func (c *Cache) Subscribe() (<-chan *tracker.Dataset, func()) {
	ch := make(chan *tracker.Dataset, 1)
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Cache) refresh(ctx context.Context) (*tracker.Dataset, error) {
	v, err, _ := c.group.Do("dataset", func() (any, error) {
		// Shared by every waiting caller, so one caller's cancellation
		// must not abort the load for the others.
		lctx := context.WithoutCancel(ctx)
		started := c.now()
		ds, err := c.load(lctx)
		ev := LoadEvent{Started: started, Duration: c.now().Sub(started), Dataset: ds, Err: err}
		c.fire(ev)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.ds = ds
		c.loadedAt = c.now()
		c.mu.Unlock()

		c.publish(ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tracker.Dataset), nil
}

func (c *Cache) fire(ev LoadEvent) {
	c.hookMu.RLock()
	hooks := append([]func(LoadEvent){}, c.hooks...)
	c.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(ev)
	}
}

func (c *Cache) publish(ds *tracker.Dataset) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ds:
		default:
			// Drop the pending dataset in favour of the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ds:
			default:
			}
		}
	}
}
