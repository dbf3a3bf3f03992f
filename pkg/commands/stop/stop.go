// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package stop halts a cluster without destroying it.
package stop

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/util/logutils"
)

// Options control one stop.
type Options struct {
	// Alias names the profile to stop.  Empty means the active one.
	Alias string

	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Stop halts the cluster and records it as stopped.  Stopping a
// cluster that is already down reconciles the registry and succeeds.
func Stop(octx *orchestrator.Context, opts *Options) error {
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return err
		}
	}

	record, err := reg.Resolve(opts.Alias)
	if err != nil {
		return err
	}

	octx.ClusterConfig = &record.Config
	backend, err := provision.CreateBackend(octx.Config, octx.ClusterConfig)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := context.Background()
	running, err := backend.Running(ctx)
	if err == nil && !running {
		log.Infof("Cluster %s is already stopped", record.Alias)
		return reg.SetStatus(record.Alias, registry.StatusStopped)
	}

	waiter := logutils.Waiter{
		Message:      "Stopping cluster " + record.Config.Name,
		WaitFunction: func(interface{}) error { return backend.Stop(ctx) },
	}
	if logutils.WaitFor(logutils.Info, []*logutils.Waiter{&waiter}) {
		return waiter.Error
	}

	if err = reg.SetStatus(record.Alias, registry.StatusStopped); err != nil {
		return err
	}

	octx.Profiler.InvalidateUsage()
	log.Infof("Cluster %s is stopped", record.Alias)
	return nil
}
