// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package cache

import (
	"sync"
	"time"

	"github.com/oracle-cne/klab/pkg/util"
)

// invalidateDepthLimit bounds transitive invalidation so that
// dependency cycles cannot loop forever.
const invalidateDepthLimit = 8

// Entry is a single memoized value along with its validity metadata.
// An entry is usable only while it is marked valid and its TTL has
// not lapsed.
type Entry struct {
	Key        string
	Value      interface{}
	CapturedAt time.Time
	TTL        time.Duration
	DependsOn  []string
	Valid      bool
}

// Cache memoizes expensive probe results.  Entries carry a TTL and a
// set of keys they depend on.  Invalidating a key cascades to every
// entry that depends on it, directly or transitively.  It is not an
// eviction cache; entries are few and keyed by probe name.
type Cache struct {
	mutex   sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: map[string]*Entry{},
		now:     time.Now,
	}
}

// Set stores a value under the given key.  Any dependencies name other
// cache keys; when one of those keys is invalidated, this entry is
// invalidated with it.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration, deps ...string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &Entry{
		Key:        key,
		Value:      value,
		CapturedAt: c.now(),
		TTL:        ttl,
		DependsOn:  deps,
		Valid:      true,
	}
}

// Get returns the value for the given key if it is present, still
// valid, and within its TTL.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[key]
	if !ok || !entry.Valid {
		return nil, false
	}
	if c.now().Sub(entry.CapturedAt) > entry.TTL {
		entry.Valid = false
		return nil, false
	}
	return entry.Value, true
}

// Invalidate marks the given key invalid and cascades to all entries
// that depend on it.  Invalidating a key that is not cached is a no-op
// for that key, but dependents are still swept in case they were added
// before the dependency itself.
func (c *Cache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	invalidated := util.NewSetFromSlice([]string{key})
	if entry, ok := c.entries[key]; ok {
		entry.Valid = false
	}

	// Edges are stored on the dependent, so each pass scans for
	// entries that depend on anything invalidated so far.
	for depth := 0; depth < invalidateDepthLimit; depth++ {
		grew := false
		for _, entry := range c.entries {
			if !entry.Valid || invalidated.Contains(entry.Key) {
				continue
			}
			for _, dep := range entry.DependsOn {
				if invalidated.Contains(dep) {
					entry.Valid = false
					invalidated.Add(entry.Key)
					grew = true
					break
				}
			}
		}
		if !grew {
			break
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = map[string]*Entry{}
}

// Len returns the number of entries, including invalid ones that have
// not been overwritten.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}
