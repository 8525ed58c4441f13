package cache

import (
	"sync"

	"tacsim/internal/sim"
)

// Results layers an in-process map over an optional DiskCache.
type Results struct {
	mu   sync.RWMutex
	mem  map[Digest]sim.Result
	disk *DiskCache

	hits, misses int
}

// NewResults creates a cache; disk may be nil.
func NewResults(disk *DiskCache, capHint int) *Results {
	return &Results{mem: make(map[Digest]sim.Result, capHint), disk: disk}
}

// Lookup checks memory first, then disk. Disk read errors are misses.
func (c *Results) Lookup(key Digest) (sim.Result, bool) {
	c.mu.RLock()
	r, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		c.count(true)
		return r, true
	}

	var e Entry
	if found, err := c.disk.Get(key, &e); err != nil || !found {
		c.count(false)
		return sim.Result{}, false
	}
	r = e.Result()
	c.mu.Lock()
	c.mem[key] = r
	c.mu.Unlock()
	c.count(true)
	return r, true
}

// Store records r in memory and on disk.
func (c *Results) Store(key Digest, r sim.Result) error {
	c.mu.Lock()
	c.mem[key] = r
	c.mu.Unlock()
	return c.disk.Put(key, NewEntry(r))
}

// Stats returns lookup hits and misses so far.
func (c *Results) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Results) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}
