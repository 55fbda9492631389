// Package duration memoizes clip durations discovered by a probe.Prober.
//
// Every lookup result, success or failure, is stored keyed by clip identity,
// so a clip is probed at most once per process. Concurrent lookups of the same
// clip share a single probe.
package duration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/samber/mo"
	"golang.org/x/sync/singleflight"
)

// ErrUnknown wraps every failed discovery.
var ErrUnknown = errors.New("duration unknown")

// Cache is safe for concurrent use.
type Cache struct {
	prober  probe.Prober
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string]mo.Result[float64]
	group   singleflight.Group

	store *store
}

// New returns an empty cache. A non-positive timeout disables the per-probe deadline.
func New(prober probe.Prober, timeout time.Duration) *Cache {
	return &Cache{
		prober:  prober,
		timeout: timeout,
		entries: make(map[string]mo.Result[float64]),
	}
}

// Lookup returns the duration of clip in seconds, probing on first use.
func (c *Cache) Lookup(ctx context.Context, clip library.Clip) mo.Result[float64] {
	id := clip.ID()
	if result, ok := c.cached(id); ok {
		return result
	}

	v, _, _ := c.group.Do(id, func() (interface{}, error) {
		if result, ok := c.cached(id); ok {
			return result, nil
		}

		result := c.discover(ctx, clip)

		// the caller went away, so the failure says nothing about the clip
		if result.IsError() && ctx.Err() != nil {
			return result, nil
		}

		c.mu.Lock()
		c.entries[id] = result
		c.mu.Unlock()
		return result, nil
	})

	return v.(mo.Result[float64])
}

// Duration returns the duration in seconds, or 0 when it could not be discovered.
func (c *Cache) Duration(ctx context.Context, clip library.Clip) float64 {
	return c.Lookup(ctx, clip).OrElse(0)
}

// Known reports whether clip already has a stored result.
func (c *Cache) Known(clip library.Clip) bool {
	_, ok := c.cached(clip.ID())
	return ok
}

// Len returns the number of stored results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cached(id string) (mo.Result[float64], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[id]
	return result, ok
}

func (c *Cache) discover(ctx context.Context, clip library.Clip) mo.Result[float64] {
	c.mu.RLock()
	s := c.store
	c.mu.RUnlock()

	if seconds, ok := s.lookup(clip); ok {
		log.Debugf("duration of %s restored from store: %.3fs", clip, seconds)
		return mo.Ok(seconds)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	seconds, err := c.prober.Discover(ctx, clip.Path)
	if err != nil {
		log.Warnf("probing %s failed after %s: %v", clip, time.Since(started).Round(time.Millisecond), err)
		return mo.Err[float64](fmt.Errorf("%w: %s: %w", ErrUnknown, clip, err))
	}

	log.Debugf("probed %s: %.3fs in %s", clip, seconds, time.Since(started).Round(time.Millisecond))
	s.save(clip, seconds)
	return mo.Ok(seconds)
}
