// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package rollback

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/state"
	"github.com/oracle-cne/klab/pkg/system"
)

// fakeBackend records teardown calls.
type fakeBackend struct {
	deleteErr error
	calls     []string
}

func (b *fakeBackend) Verify(context.Context) error            { return nil }
func (b *fakeBackend) Provision(context.Context) (bool, error) { return false, nil }
func (b *fakeBackend) Start(context.Context) error             { return nil }
func (b *fakeBackend) Stop(context.Context) error              { return nil }

func (b *fakeBackend) Delete(context.Context) error {
	b.calls = append(b.calls, "delete")
	return b.deleteErr
}

func (b *fakeBackend) Running(context.Context) (bool, error)          { return false, nil }
func (b *fakeBackend) InstallComponent(context.Context, string) error { return nil }

func (b *fakeBackend) RemoveComponent(_ context.Context, component string) error {
	b.calls = append(b.calls, "remove "+component)
	return nil
}

func (b *fakeBackend) KubeconfigPath() string   { return "" }
func (b *fakeBackend) APIServerAddress() string { return "" }
func (b *fakeBackend) Close() error             { return nil }

func testHarness(t *testing.T, backend *fakeBackend) (*orchestrator.Context, *registry.Registry) {
	provision.RegisterBackend(constants.DefaultBackend, func(*types.Config, *types.ClusterConfig) (provision.Backend, error) {
		return backend, nil
	})

	journal, err := state.Open(filepath.Join(t.TempDir(), constants.InstallStateFilename))
	assert.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	octx := &orchestrator.Context{
		Config:   &types.Config{},
		Profiler: system.NewProfiler(cache.New(), klaberr.NewStack()),
		Journal:  journal,
		Errors:   klaberr.NewStack(),
	}
	return octx, registry.At(t.TempDir())
}

// TestRollback tests undoing an interrupted installation
// GIVEN a journal where the cluster step completed, one component
// completed, and a second component failed
//
//	WHEN Rollback runs
//	THEN only the failed component is torn down and the journal is
//	cleared
func TestRollback(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)

	assert.NoError(t, octx.Journal.Record("preflight", state.PhaseStarted))
	assert.NoError(t, octx.Journal.Record("preflight", state.PhaseCompleted))
	assert.NoError(t, octx.Journal.Record("cluster", state.PhaseStarted))
	assert.NoError(t, octx.Journal.Record("cluster", state.PhaseCompleted))
	assert.NoError(t, octx.Journal.Record("registry", state.PhaseStarted))
	assert.NoError(t, octx.Journal.Record("registry", state.PhaseCompleted))
	assert.NoError(t, octx.Journal.Record("ingress", state.PhaseStarted))
	assert.NoError(t, octx.Journal.Record("ingress", state.PhaseFailed))

	err = Rollback(octx, &Options{Registry: reg})
	assert.NoError(t, err)
	assert.Equal(t, []string{"remove ingress"}, backend.calls)
	assert.False(t, octx.Journal.HasHistory())
}

// TestRollbackInterruptedCluster tests undoing a run that died while
// provisioning
// GIVEN a journal whose cluster step has a trailing Started
//
//	WHEN Rollback runs
//	THEN the cluster is deleted and later steps that never started
//	are not touched
func TestRollbackInterruptedCluster(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)

	assert.NoError(t, octx.Journal.Record("preflight", state.PhaseStarted))
	assert.NoError(t, octx.Journal.Record("preflight", state.PhaseCompleted))
	assert.NoError(t, octx.Journal.Record("cluster", state.PhaseStarted))

	err = Rollback(octx, &Options{Registry: reg})
	assert.NoError(t, err)
	assert.Equal(t, []string{"delete"}, backend.calls)
	assert.False(t, octx.Journal.HasHistory())
}

// TestRollbackActivate tests resetting the registry status
// GIVEN a journal whose activation step never completed
//
//	WHEN Rollback runs
//	THEN the profile is recorded as Stopped
func TestRollbackActivate(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)
	assert.NoError(t, reg.SetStatus("dev", registry.StatusRunning))

	assert.NoError(t, octx.Journal.Record("activate", state.PhaseStarted))

	err = Rollback(octx, &Options{Registry: reg})
	assert.NoError(t, err)

	record, err := reg.Get("dev")
	assert.NoError(t, err)
	assert.Equal(t, registry.StatusStopped, record.Status)
}

// TestRollbackNothingToDo tests a clean journal
// GIVEN no journal history
//
//	WHEN Rollback runs
//	THEN it succeeds without touching any backend
func TestRollbackNothingToDo(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)

	err := Rollback(octx, &Options{Registry: reg})
	assert.NoError(t, err)
	assert.Empty(t, backend.calls)
}

// TestRollbackTeardownFailure tests a teardown that cannot finish
// GIVEN a cluster deletion that fails
//
//	WHEN Rollback runs
//	THEN the error surfaces and the journal is kept for a retry
func TestRollbackTeardownFailure(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("the manager is wedged")}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)

	assert.NoError(t, octx.Journal.Record("cluster", state.PhaseStarted))

	err = Rollback(octx, &Options{Registry: reg})
	assert.Error(t, err)
	assert.True(t, klaberr.IsKind(err, klaberr.KindInstallationFailed))
	assert.True(t, octx.Journal.HasHistory())
}

// TestRollbackNoProfile tests an orphaned journal
// GIVEN journal history but no registered profile
//
//	WHEN Rollback runs
//	THEN the mismatch is reported as not found
func TestRollbackNoProfile(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)

	assert.NoError(t, octx.Journal.Record("cluster", state.PhaseStarted))

	err := Rollback(octx, &Options{Registry: reg})
	assert.Error(t, err)
	assert.True(t, klaberr.IsKind(err, klaberr.KindNotFound))
}
