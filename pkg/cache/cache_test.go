// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestGetSet tests basic storage and retrieval
// GIVEN a cache with one entry
// WHEN Get is called for that key and for a missing key
// THEN the stored value is returned and the missing key reports a miss
func TestGetSet(t *testing.T) {
	c := New()
	c.Set("os", "linux", time.Hour)

	value, ok := c.Get("os")
	assert.True(t, ok)
	assert.Equal(t, "linux", value)

	_, ok = c.Get("arch")
	assert.False(t, ok)
}

// TestTTLExpiry tests that entries lapse after their TTL
// GIVEN a cache entry with a 30 second TTL
// WHEN the clock advances past the TTL
// THEN Get reports a miss
func TestTTLExpiry(t *testing.T) {
	base := time.Now()
	c := New()
	c.now = func() time.Time { return base }

	c.Set("runtime-liveness", true, 30*time.Second)

	_, ok := c.Get("runtime-liveness")
	assert.True(t, ok)

	base = base.Add(29 * time.Second)
	_, ok = c.Get("runtime-liveness")
	assert.True(t, ok, "entry should survive inside its TTL")

	base = base.Add(2 * time.Second)
	_, ok = c.Get("runtime-liveness")
	assert.False(t, ok, "entry should lapse past its TTL")
}

// TestInvalidateCascade tests transitive dependency invalidation
// GIVEN entries chained by dependencies
// WHEN the root key is invalidated
// THEN every transitive dependent is invalidated and unrelated keys survive
func TestInvalidateCascade(t *testing.T) {
	c := New()
	c.Set("total-ram", 8192, time.Hour)
	c.Set("available-ram", 6144, time.Hour, "total-ram")
	c.Set("feasible-set", []string{"registry"}, time.Hour, "available-ram")
	c.Set("os", "linux", time.Hour)

	c.Invalidate("total-ram")

	_, ok := c.Get("total-ram")
	assert.False(t, ok)
	_, ok = c.Get("available-ram")
	assert.False(t, ok, "direct dependent should be invalidated")
	_, ok = c.Get("feasible-set")
	assert.False(t, ok, "transitive dependent should be invalidated")

	value, ok := c.Get("os")
	assert.True(t, ok, "unrelated entry should survive")
	assert.Equal(t, "linux", value)
}

// TestInvalidateMissingKey tests invalidation of a key that is not cached
// GIVEN a cache whose entries depend on an uncached key
// WHEN that key is invalidated
// THEN the dependents are still swept and other entries survive
func TestInvalidateMissingKey(t *testing.T) {
	c := New()
	c.Set("cluster-liveness", true, time.Minute, "runtime-liveness")
	c.Set("os", "linux", time.Hour)

	c.Invalidate("runtime-liveness")

	_, ok := c.Get("cluster-liveness")
	assert.False(t, ok)
	_, ok = c.Get("os")
	assert.True(t, ok)
}

// TestInvalidateCycle tests that dependency cycles terminate
// GIVEN two entries that depend on each other
// WHEN one is invalidated
// THEN invalidation terminates and both entries are invalid
func TestInvalidateCycle(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Hour, "b")
	c.Set("b", 2, time.Hour, "a")

	c.Invalidate("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

// TestClear tests that Clear drops every entry
func TestClear(t *testing.T) {
	c := New()
	c.Set("os", "linux", time.Hour)
	c.Set("arch", "amd64", time.Hour)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("os")
	assert.False(t, ok)
}

// TestMemoize tests the compute-once behavior
// GIVEN a compute function that counts its calls
// WHEN Memoize is called twice for the same key
// THEN compute runs only once and both calls return the same value
func TestMemoize(t *testing.T) {
	c := New()
	calls := 0
	compute := func() (int, error) {
		calls = calls + 1
		return 4096, nil
	}

	value, err := Memoize(c, "total-ram", time.Hour, nil, compute)
	assert.NoError(t, err)
	assert.Equal(t, 4096, value)

	value, err = Memoize(c, "total-ram", time.Hour, nil, compute)
	assert.NoError(t, err)
	assert.Equal(t, 4096, value)
	assert.Equal(t, 1, calls, "compute should run only once")
}

// TestMemoizeError tests that compute failures are not cached
// GIVEN a compute function that fails once and then succeeds
// WHEN Memoize is called twice
// THEN the first error is returned and the second call recomputes
func TestMemoizeError(t *testing.T) {
	c := New()
	calls := 0
	compute := func() (string, error) {
		calls = calls + 1
		if calls == 1 {
			return "", errors.New("probe failed")
		}
		return "podman", nil
	}

	_, err := Memoize(c, "runtime-flavor", time.Minute, nil, compute)
	assert.Error(t, err)

	value, err := Memoize(c, "runtime-flavor", time.Minute, nil, compute)
	assert.NoError(t, err)
	assert.Equal(t, "podman", value)
	assert.Equal(t, 2, calls)
}

// TestMemoizeWrongType tests recovery from a mistyped entry
// GIVEN a cached value whose type does not match the memoized type
// WHEN Memoize recomputes and the compute fails
// THEN the mistyped entry is dropped instead of outliving the failure
func TestMemoizeWrongType(t *testing.T) {
	c := New()
	c.Set("cpu-cores", "eight", time.Hour)

	_, err := Memoize(c, "cpu-cores", time.Hour, nil, func() (int, error) {
		return 0, errors.New("probe failed")
	})
	assert.Error(t, err)

	_, ok := c.Get("cpu-cores")
	assert.False(t, ok, "the mistyped entry must not survive")

	value, err := Memoize(c, "cpu-cores", time.Hour, nil, func() (int, error) {
		return 8, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 8, value)
}
