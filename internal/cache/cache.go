// Package cache holds the fragment cache of a navigation session: a map from
// normalized page URL to extracted fragment that only grows.
//
// Entries are created lazily on the first successful fill of a URL and are
// never evicted, never expire and never change once stored. Concurrent
// fills of the same URL are collapsed into one call of the fill function.
package cache

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FillFunc produces the fragment for a URL on a cache miss.
type FillFunc func(ctx context.Context, url string) (string, error)

// Cache is a session-lifetime fragment cache. The zero value is not usable;
// create one with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string

	group singleflight.Group

	fills int
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the fragment stored for url.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fragment, ok := c.entries[url]
	return fragment, ok
}

// Put stores fragment for url unless an entry already exists. It reports
// whether the entry was added.
func (c *Cache) Put(url, fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return false
	}
	c.entries[url] = fragment
	return true
}

// Len returns the number of cached fragments.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached URLs in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fills returns how many times a fill function ran to completion with a
// stored result.
func (c *Cache) Fills() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fills
}

// Load returns the cached fragment for url, calling fill on a miss.
//
// fromCache reports whether the fragment was already stored when Load was
// called. At most one fill runs per URL at a time; callers arriving while a
// fill is in flight wait for its result. The fill runs detached from the
// cancellation of ctx so that a caller giving up does not discard work
// another caller is waiting on; ctx only bounds how long this caller waits.
// Failed fills are not cached.
func (c *Cache) Load(ctx context.Context, url string, fill FillFunc) (fragment string, fromCache bool, err error) {
	if fragment, ok := c.Get(url); ok {
		return fragment, true, nil
	}

	fillCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (any, error) {
		if fragment, ok := c.Get(url); ok {
			return fragment, nil
		}
		fragment, err := fill(fillCtx, url)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		if existing, ok := c.entries[url]; ok {
			fragment = existing
		} else {
			c.entries[url] = fragment
			c.fills++
		}
		c.mu.Unlock()
		return fragment, nil
	})

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	}
}
