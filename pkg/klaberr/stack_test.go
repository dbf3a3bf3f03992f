// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package klaberr

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackLastError(t *testing.T) {
	t.Parallel()

	s := NewStack()
	assert.Equal(t, KindUnknown, s.LastKind(), "empty stack must report unknown")
	_, ok := s.Last()
	assert.False(t, ok)

	s.Record(KindRuntimeNotRunning, "preflight", "docker stopped")
	s.Record(KindPortInUse, "base-cluster", "6443 busy")

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, KindPortInUse, last.Kind, "last error must be the most recent")
	assert.Equal(t, "base-cluster", last.Site)
	assert.Equal(t, KindPortInUse, s.LastKind())
}

func TestStackEviction(t *testing.T) {
	t.Parallel()

	s := NewStack()
	for i := 0; i < StackCapacity+10; i++ {
		s.Record(KindInstallationFailed, "step", fmt.Sprintf("failure %d", i))
	}

	assert.Equal(t, StackCapacity, s.Len(), "stack must stay bounded")
	entries := s.Entries()
	assert.Equal(t, "failure 10", entries[0].Message, "oldest entries must be evicted first")
	assert.Equal(t, fmt.Sprintf("failure %d", StackCapacity+9), entries[len(entries)-1].Message)
}

func TestStackConcurrentRecord(t *testing.T) {
	t.Parallel()

	// GIVEN a stack shared between two goroutines, the way the
	// executor and the monitor-driven profiler share one
	// WHEN both record failures and read the history concurrently
	// THEN every access is serialized and the bound holds
	s := NewStack()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.RecordError("system.AvailableRAMMB", New(KindProbeUnavailable, "probe", "goroutine %d failure %d", g, i))
				s.Entries()
				s.LastKind()
				s.Len()
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, StackCapacity, s.Len(), "stack must stay bounded under concurrent use")
	assert.Equal(t, KindProbeUnavailable, s.LastKind())
}

func TestStackRecordError(t *testing.T) {
	t.Parallel()

	s := NewStack()
	s.RecordError("switch", nil)
	assert.Equal(t, 0, s.Len(), "nil errors are not recorded")

	s.RecordError("switch", New(KindNotFound, "switch", "no such alias"))
	assert.Equal(t, KindNotFound, s.LastKind())
}
