// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package cache

import (
	"time"
)

// Memoize returns the cached value for the given key when one is
// available, and otherwise runs compute, stores the result, and
// returns it.  Compute failures are returned to the caller and leave
// the cache untouched so the next call retries.
func Memoize[T any](c *Cache, key string, ttl time.Duration, deps []string, compute func() (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
		// The entry holds a value of the wrong type.  Drop it so it
		// cannot outlive a failed recompute.
		c.Invalidate(key)
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	c.Set(key, value, ttl, deps...)
	return value, nil
}
