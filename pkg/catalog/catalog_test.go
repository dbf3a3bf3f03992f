// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLoad tests the embedded catalog
// GIVEN the embedded component document
//
//	WHEN Load is called
//	THEN every component parses, priorities are unique, and the
//	result is ordered by priority
func TestLoad(t *testing.T) {
	c, err := Load()
	assert.NoError(t, err)

	components := c.Components()
	assert.Len(t, components, 6)
	assert.Equal(t, []string{"registry", "metrics", "ingress", "dashboard", "logging", "monitoring"}, c.Names())

	for i := 1; i < len(components); i++ {
		assert.Less(t, components[i-1].Priority, components[i].Priority, "components should be in priority order")
	}
}

// TestGet tests lookup by name
func TestGet(t *testing.T) {
	c, err := Load()
	assert.NoError(t, err)

	registry, ok := c.Get("registry")
	assert.True(t, ok)
	assert.Equal(t, int64(100), registry.MinMemoryMB)
	assert.Equal(t, 1, registry.Priority)
	assert.Equal(t, KindInfrastructure, registry.Kind)

	monitoring, ok := c.Get("monitoring")
	assert.True(t, ok)
	assert.Equal(t, int64(800), monitoring.MinMemoryMB)

	_, ok = c.Get("bitcoin-miner")
	assert.False(t, ok)
}

// TestSupportedFor tests version gating
// GIVEN components with differing minimum Kubernetes versions
//
//	WHEN SupportedFor is called with an old and a current version
//	THEN the old version filters out newer components
func TestSupportedFor(t *testing.T) {
	c, err := Load()
	assert.NoError(t, err)

	old, err := c.SupportedFor("1.26")
	assert.NoError(t, err)
	oldNames := []string{}
	for _, component := range old {
		oldNames = append(oldNames, component.Name)
	}
	assert.Equal(t, []string{"registry", "metrics", "ingress", "dashboard"}, oldNames)

	current, err := c.SupportedFor("1.30")
	assert.NoError(t, err)
	assert.Len(t, current, 6)

	_, err = c.SupportedFor("not-a-version")
	assert.Error(t, err)
}
