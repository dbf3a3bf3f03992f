// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package rollback tears down whatever an interrupted installation
// left behind.  The journal says which steps never completed; each is
// mapped back onto the teardown the installer would have used.
package rollback

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/util/logutils"
)

// Options control one rollback.
type Options struct {
	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Seam for executor construction, replaced in tests.
var newExecutor = orchestrator.NewExecutor

// Rollback replays the journal and undoes every incomplete step,
// most recent first.  The journal is cleared only when every teardown
// succeeded, so a partial rollback can be retried.
func Rollback(octx *orchestrator.Context, opts *Options) error {
	incomplete := octx.Journal.Incomplete()
	if len(incomplete) == 0 {
		log.Info("No interrupted installation exists; nothing to roll back")
		return octx.Journal.Clear()
	}

	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return err
		}
	}

	record, err := reg.Active()
	if err != nil {
		return err
	}
	if record == nil {
		return klaberr.New(klaberr.KindNotFound, "rollback", "the journal references an installation but no cluster profile exists")
	}

	octx.ClusterConfig = &record.Config
	backend, err := provision.CreateBackend(octx.Config, octx.ClusterConfig)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := context.Background()
	executor := newExecutor(octx)
	for _, step := range incomplete {
		switch step {
		case "preflight", "kubeconfig":
			// Checks and waits leave nothing behind.
		case "cluster":
			executor.RegisterTeardown(step, func() error { return backend.Delete(ctx) })
		case "activate":
			alias := record.Alias
			executor.RegisterTeardown(step, func() error { return reg.SetStatus(alias, registry.StatusStopped) })
		default:
			component := step
			executor.RegisterTeardown(step, func() error { return backend.RemoveComponent(ctx, component) })
		}
	}

	waiter := logutils.Waiter{
		Message:      "Rolling back the interrupted installation",
		WaitFunction: func(interface{}) error { return executor.Rollback() },
	}
	if logutils.WaitFor(logutils.Info, []*logutils.Waiter{&waiter}) {
		return waiter.Error
	}

	octx.Profiler.InvalidateUsage()
	log.Info("Rollback complete")
	return octx.Journal.Clear()
}
