// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package stop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/system"
)

// fakeBackend scripts the provisioner and records every call.
type fakeBackend struct {
	running bool
	stopErr error
	calls   []string
}

func (b *fakeBackend) Verify(context.Context) error            { return nil }
func (b *fakeBackend) Provision(context.Context) (bool, error) { return false, nil }
func (b *fakeBackend) Start(context.Context) error             { b.calls = append(b.calls, "start"); return nil }

func (b *fakeBackend) Stop(context.Context) error {
	b.calls = append(b.calls, "stop")
	return b.stopErr
}

func (b *fakeBackend) Delete(context.Context) error                   { b.calls = append(b.calls, "delete"); return nil }
func (b *fakeBackend) Running(context.Context) (bool, error)          { return b.running, nil }
func (b *fakeBackend) InstallComponent(context.Context, string) error { return nil }
func (b *fakeBackend) RemoveComponent(context.Context, string) error  { return nil }
func (b *fakeBackend) KubeconfigPath() string                         { return "" }
func (b *fakeBackend) APIServerAddress() string                       { return "" }
func (b *fakeBackend) Close() error                                   { return nil }

func testHarness(t *testing.T, backend *fakeBackend) (*orchestrator.Context, *registry.Registry) {
	provision.RegisterBackend(constants.DefaultBackend, func(*types.Config, *types.ClusterConfig) (provision.Backend, error) {
		return backend, nil
	})

	octx := &orchestrator.Context{
		Config:   &types.Config{},
		Profiler: system.NewProfiler(cache.New(), klaberr.NewStack()),
	}
	return octx, registry.At(t.TempDir())
}

// TestStop tests stopping a running cluster
// GIVEN a profile whose cluster is up
//
//	WHEN Stop runs
//	THEN the backend stops the cluster and the profile is recorded
//	as Stopped
func TestStop(t *testing.T) {
	backend := &fakeBackend{running: true}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)
	assert.NoError(t, reg.SetStatus("dev", registry.StatusRunning))

	err = Stop(octx, &Options{Registry: reg})
	assert.NoError(t, err)
	assert.Equal(t, []string{"stop"}, backend.calls)

	record, err := reg.Get("dev")
	assert.NoError(t, err)
	assert.Equal(t, registry.StatusStopped, record.Status)
}

// TestStopAlreadyStopped tests idempotent stop
// GIVEN a cluster that is already down
//
//	WHEN Stop runs
//	THEN the backend is left alone and the registry is reconciled
func TestStopAlreadyStopped(t *testing.T) {
	backend := &fakeBackend{running: false}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)
	assert.NoError(t, reg.SetStatus("dev", registry.StatusRunning))

	err = Stop(octx, &Options{Registry: reg})
	assert.NoError(t, err)
	assert.Empty(t, backend.calls)

	record, err := reg.Get("dev")
	assert.NoError(t, err)
	assert.Equal(t, registry.StatusStopped, record.Status)
}

// TestStopFailure tests a backend that cannot stop the cluster
// GIVEN a backend whose stop fails
//
//	WHEN Stop runs
//	THEN the error surfaces and the profile stays Running
func TestStopFailure(t *testing.T) {
	backend := &fakeBackend{
		running: true,
		stopErr: klaberr.New(klaberr.KindTimeout, "stop", "the cluster did not shut down in time"),
	}
	octx, reg := testHarness(t, backend)
	_, err := reg.Create("dev", "4Gi")
	assert.NoError(t, err)
	assert.NoError(t, reg.SetStatus("dev", registry.StatusRunning))

	err = Stop(octx, &Options{Registry: reg})
	assert.Error(t, err)
	assert.True(t, klaberr.IsKind(err, klaberr.KindTimeout))
	assert.Equal(t, 5, klaberr.ExitCode(err))

	record, err := reg.Get("dev")
	assert.NoError(t, err)
	assert.Equal(t, registry.StatusRunning, record.Status)
}

// TestStopUnknownAlias tests resolution of a missing profile
// GIVEN no profile registered under the requested alias
//
//	WHEN Stop runs
//	THEN the command fails with the not-found classification
func TestStopUnknownAlias(t *testing.T) {
	backend := &fakeBackend{}
	octx, reg := testHarness(t, backend)

	err := Stop(octx, &Options{Registry: reg, Alias: "ghost"})
	assert.Error(t, err)
	assert.True(t, klaberr.IsKind(err, klaberr.KindNotFound))
	assert.Empty(t, backend.calls)
}
