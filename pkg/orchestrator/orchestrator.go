// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package orchestrator drives multi-step cluster operations.  Each
// step is guarded by a durable state transition, failures are run
// through a per-error-kind recovery table, and anything started but
// never completed can be rolled back.
package orchestrator

import (
	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/catalog"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/state"
	"github.com/oracle-cne/klab/pkg/system"
)

// Context carries everything a lifecycle operation needs: the
// persisted configuration, the cluster being operated on, the system
// profiler, the component catalog, the installation journal, and the
// diagnostic history.  It is assembled once per command invocation
// and passed explicitly; there is no package-level state, so tests
// can fabricate a Context from fakes.
type Context struct {
	Config        *types.Config
	ClusterConfig *types.ClusterConfig
	Profiler      *system.Profiler
	Catalog       *catalog.Catalog
	Journal       *state.Journal
	Errors        *klaberr.Stack
}

// NewContext builds a Context around the given configuration, wiring
// a fresh cache, profiler, and diagnostic stack.  The component
// catalog is loaded from the embedded manifest and the journal is
// replayed from disk, so any unfinished run is visible immediately.
func NewContext(config *types.Config, clusterConfig *types.ClusterConfig) (*Context, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	journalPath, err := state.DefaultPath()
	if err != nil {
		return nil, err
	}
	journal, err := state.Open(journalPath)
	if err != nil {
		return nil, err
	}

	errs := klaberr.NewStack()
	return &Context{
		Config:        config,
		ClusterConfig: clusterConfig,
		Profiler:      system.NewProfiler(cache.New(), errs),
		Catalog:       cat,
		Journal:       journal,
		Errors:        errs,
	}, nil
}

// Close releases the journal.  The profiler cache needs no teardown.
func (octx *Context) Close() error {
	if octx.Journal == nil {
		return nil
	}
	return octx.Journal.Close()
}
