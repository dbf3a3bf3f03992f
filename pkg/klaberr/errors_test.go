// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package klaberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		testName string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"installation failure", New(KindInstallationFailed, "install", "boom"), ExitGeneral},
		{"runtime missing", New(KindRuntimeUnavailable, "preflight", "no runtime"), ExitDependencyMissing},
		{"runtime stopped", New(KindRuntimeNotRunning, "preflight", "stopped"), ExitDependencyMissing},
		{"repo failure", New(KindDependencyRepoFailed, "fetch", "unreachable"), ExitDependencyMissing},
		{"low memory", New(KindInsufficientMemory, "plan", "too small"), ExitResourceInsufficient},
		{"port conflict", New(KindPortInUse, "base-cluster", "6443 busy"), ExitNetworkConflict},
		{"network conflict", New(KindNetworkConflict, "base-cluster", "subnet clash"), ExitNetworkConflict},
		{"timeout", New(KindTimeout, "readiness", "gave up"), ExitTimeout},
		{"permissions", New(KindPermissionDenied, "state", "read only"), ExitPermissionDenied},
		{"missing config", New(KindConfigMissing, "config", "no file"), ExitConfigInvalid},
		{"broken config", New(KindConfigInvalid, "config", "bad line"), ExitConfigInvalid},
		{"untyped error", errors.New("something else"), ExitGeneral},
	}

	for _, testCase := range testCases {
		tc := testCase
		t.Run(tc.testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCode(tc.err), "wrong exit class for %v", tc.err)
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	base := New(KindPortInUse, "base-cluster", "port 6443 busy")
	wrapped := fmt.Errorf("starting cluster: %w", base)

	assert.Equal(t, KindPortInUse, KindOf(base), "kind lost on direct error")
	assert.Equal(t, KindPortInUse, KindOf(wrapped), "kind lost through wrapping")
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")), "plain errors must report unknown")
	assert.True(t, IsKind(wrapped, KindPortInUse))
	assert.False(t, IsKind(wrapped, KindTimeout))
}

func TestWrapNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Wrap(KindTimeout, "readiness", nil), "wrapping nil must stay nil")
	assert.Nil(t, WithAttempt(nil, "restart runtime"), "attempt on nil must stay nil")
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := New(KindPortInUse, "base-cluster", "port %d already in use", 6443)
	msg := err.Error()
	assert.Contains(t, msg, "base-cluster:", "message must name the step")
	assert.Contains(t, msg, "port 6443 already in use", "message must carry detail")
	assert.Contains(t, msg, "(port-in-use)", "message must name the kind")

	withAttempt := WithAttempt(err, "terminate process holding port 6443")
	assert.Contains(t, withAttempt.Error(), "attempted: terminate process holding port 6443",
		"surfaced errors must say what recovery already tried")
}

func TestWithAttemptOnPlainError(t *testing.T) {
	t.Parallel()

	err := WithAttempt(errors.New("exec failed"), "restart runtime")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Contains(t, err.Error(), "attempted: restart runtime")
}
