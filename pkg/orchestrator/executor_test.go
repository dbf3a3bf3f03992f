// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package orchestrator

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/state"
)

// testExecutor returns an executor over a throwaway journal with
// sleeping disabled and an empty recovery table.
func testExecutor(t *testing.T) (*Executor, *state.Journal) {
	journal, err := state.Open(filepath.Join(t.TempDir(), "install.state"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	octx := &Context{
		Journal: journal,
		Errors:  klaberr.NewStack(),
	}
	e := NewExecutor(octx)
	e.Remedies = map[klaberr.Kind]Remedy{}
	e.sleep = func(time.Duration) {}
	return e, journal
}

// TestRunStepJournalsOutcome tests the per-step state machine
// GIVEN an executor over an empty journal
//
//	WHEN a step succeeds and another fails
//	THEN the journal records Completed and Failed respectively
func TestRunStepJournalsOutcome(t *testing.T) {
	e, journal := testExecutor(t)

	err := e.RunStep("registry", func() error { return nil })
	assert.NoError(t, err)

	phase, ok := journal.Latest("registry")
	assert.True(t, ok)
	assert.Equal(t, state.PhaseCompleted, phase)

	stepErr := klaberr.New(klaberr.KindInstallationFailed, "ingress", "no ingress for you")
	err = e.RunStep("ingress", func() error { return stepErr })
	assert.Error(t, err)

	phase, ok = journal.Latest("ingress")
	assert.True(t, ok)
	assert.Equal(t, state.PhaseFailed, phase)
}

// TestRunStepJournalsBeforeAction tests transition ordering
// GIVEN a step action that inspects the journal
//
//	WHEN the step runs
//	THEN the Started record is already durable when the action begins
func TestRunStepJournalsBeforeAction(t *testing.T) {
	e, journal := testExecutor(t)

	var phaseDuringAction state.Phase
	err := e.RunStep("cluster", func() error {
		phaseDuringAction, _ = journal.Latest("cluster")
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, state.PhaseStarted, phaseDuringAction)
}

// TestRollbackExactlyOnce tests rollback after a mid-install failure
// GIVEN a journal where steps A and B started and B failed
//
//	WHEN Rollback runs
//	THEN teardown is invoked for A and B exactly once each and never
//	for a component that was not started
func TestRollbackExactlyOnce(t *testing.T) {
	e, journal := testExecutor(t)

	assert.NoError(t, journal.Record("cluster", state.PhaseStarted))
	assert.NoError(t, journal.Record("registry", state.PhaseStarted))
	assert.NoError(t, journal.Record("registry", state.PhaseFailed))

	counts := map[string]int{}
	for _, component := range []string{"cluster", "registry", "ingress"} {
		component := component
		e.RegisterTeardown(component, func() error {
			counts[component]++
			return nil
		})
	}

	assert.NoError(t, e.Rollback())
	assert.Equal(t, 1, counts["cluster"])
	assert.Equal(t, 1, counts["registry"])
	assert.Equal(t, 0, counts["ingress"], "a component that never started must not be torn down")
}

// TestRollbackSkipsCompleted tests that finished components survive
func TestRollbackSkipsCompleted(t *testing.T) {
	e, journal := testExecutor(t)

	assert.NoError(t, journal.Record("cluster", state.PhaseStarted))
	assert.NoError(t, journal.Record("cluster", state.PhaseCompleted))
	assert.NoError(t, journal.Record("registry", state.PhaseStarted))

	counts := map[string]int{}
	for _, component := range []string{"cluster", "registry"} {
		component := component
		e.RegisterTeardown(component, func() error {
			counts[component]++
			return nil
		})
	}

	assert.NoError(t, e.Rollback())
	assert.Equal(t, 0, counts["cluster"])
	assert.Equal(t, 1, counts["registry"])
}

// TestRollbackBestEffort tests rollback with a failing teardown
// GIVEN two incomplete components where the first teardown fails
//
//	WHEN Rollback runs
//	THEN the second component is still torn down and the failure is
//	reported
func TestRollbackBestEffort(t *testing.T) {
	e, journal := testExecutor(t)

	// registry is more recent, so it rolls back first.
	assert.NoError(t, journal.Record("cluster", state.PhaseStarted))
	assert.NoError(t, journal.Record("registry", state.PhaseStarted))

	clusterCalls := 0
	e.RegisterTeardown("registry", func() error {
		return errors.New("the registry is stuck")
	})
	e.RegisterTeardown("cluster", func() error {
		clusterCalls++
		return nil
	})

	err := e.Rollback()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registry")
	assert.Equal(t, 1, clusterCalls, "a failed teardown must not stop rollback of siblings")
}

// TestRollbackUnregisteredComponent tests a journal entry with no teardown
func TestRollbackUnregisteredComponent(t *testing.T) {
	e, journal := testExecutor(t)

	assert.NoError(t, journal.Record("mystery", state.PhaseStarted))
	assert.NoError(t, e.Rollback())
}

// TestSmartRetryRemediation tests recovery from a remediable failure
// GIVEN an action that fails once with PortInUse and a remediation
// that succeeds
//
//	WHEN SmartRetry runs twice consecutively
//	THEN each call retries the action exactly once after remediation
func TestSmartRetryRemediation(t *testing.T) {
	e, _ := testExecutor(t)

	remediations := 0
	e.Remedies[klaberr.KindPortInUse] = Remedy{
		Description: "terminated the process holding the cluster ports",
		Apply: func() error {
			remediations++
			return nil
		},
	}

	for call := 1; call <= 2; call++ {
		actions := 0
		err := e.SmartRetry("cluster", func() error {
			actions++
			if actions == 1 {
				return klaberr.New(klaberr.KindPortInUse, "cluster", "bind: address already in use")
			}
			return nil
		})
		assert.NoError(t, err, "call %d", call)
		assert.Equal(t, 2, actions, "call %d must retry exactly once, not MaxAttempts times", call)
	}
	assert.Equal(t, 2, remediations)
}

// TestSmartRetryExhaustsAttempts tests a persistent failure
// GIVEN an action that always fails with a remediable kind
//
//	WHEN SmartRetry runs
//	THEN the action runs MaxAttempts times and the final error names
//	the kind and what was attempted
func TestSmartRetryExhaustsAttempts(t *testing.T) {
	e, _ := testExecutor(t)

	remediations := 0
	e.Remedies[klaberr.KindPortInUse] = Remedy{
		Description: "terminated the process holding the cluster ports",
		Apply: func() error {
			remediations++
			return nil
		},
	}

	actions := 0
	err := e.SmartRetry("cluster", func() error {
		actions++
		return klaberr.New(klaberr.KindPortInUse, "cluster", "bind: address already in use")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, actions)
	assert.Equal(t, 2, remediations, "no remediation after the final attempt")
	assert.Equal(t, klaberr.KindPortInUse, klaberr.KindOf(err))
	assert.Contains(t, err.Error(), "attempted: terminated the process holding the cluster ports")
}

// TestSmartRetryNoTableEntry tests a kind with no remediation
// GIVEN an action that always fails with Timeout
//
//	WHEN SmartRetry runs
//	THEN the action is retried bare and the error propagates unchanged
func TestSmartRetryNoTableEntry(t *testing.T) {
	e, _ := testExecutor(t)

	actions := 0
	err := e.SmartRetry("cluster", func() error {
		actions++
		return klaberr.New(klaberr.KindTimeout, "cluster", "timed out waiting for readiness")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, actions)
	assert.Equal(t, klaberr.KindTimeout, klaberr.KindOf(err))
	assert.NotContains(t, err.Error(), "attempted")
}

// TestSmartRetryBackoffSchedule tests the retry delays
// GIVEN an action that always fails
//
//	WHEN SmartRetry exhausts its attempts
//	THEN the delays between attempts grow exponentially
func TestSmartRetryBackoffSchedule(t *testing.T) {
	e, _ := testExecutor(t)

	var delays []time.Duration
	e.sleep = func(d time.Duration) { delays = append(delays, d) }

	err := e.SmartRetry("cluster", func() error {
		return fmt.Errorf("no luck")
	})
	assert.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

// TestSmartRetryFailedRemediation tests a remediation that cannot help
// GIVEN a remediation that itself fails
//
//	WHEN SmartRetry exhausts its attempts
//	THEN the attempts continue and the error reports the remediation
//	as unsuccessful
func TestSmartRetryFailedRemediation(t *testing.T) {
	e, _ := testExecutor(t)

	e.Remedies[klaberr.KindRuntimeNotRunning] = Remedy{
		Description: "started the container runtime",
		Apply:       func() error { return errors.New("systemctl said no") },
	}

	actions := 0
	err := e.SmartRetry("cluster", func() error {
		actions++
		return klaberr.New(klaberr.KindRuntimeNotRunning, "cluster", "the runtime is not running")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, actions)
	assert.Contains(t, err.Error(), "started the container runtime (unsuccessfully)")
}

// TestSmartRetryRecordsDiagnostics tests the error stack
func TestSmartRetryRecordsDiagnostics(t *testing.T) {
	journal, err := state.Open(filepath.Join(t.TempDir(), "install.state"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	errs := klaberr.NewStack()
	e := NewExecutor(&Context{Journal: journal, Errors: errs})
	e.Remedies = map[klaberr.Kind]Remedy{}
	e.sleep = func(time.Duration) {}

	_ = e.SmartRetry("cluster", func() error {
		return klaberr.New(klaberr.KindTimeout, "cluster", "timed out")
	})

	assert.Equal(t, 3, errs.Len())
	assert.Equal(t, klaberr.KindTimeout, errs.LastKind())
}
