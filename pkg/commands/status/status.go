// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package status gathers the one-screen overview: host profile,
// registered cluster profiles, monitor state, and any unfinished
// installation.
package status

import (
	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/monitor"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/plan"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/system"
)

// Options control one status report.
type Options struct {
	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Report is everything status renders.
type Report struct {
	Facts        system.Facts
	Tier         plan.Tier
	AvailableMB  int64
	Records      []registry.Record
	ActiveAlias  string
	MonitorPID   int
	MonitorAlive bool
	Incomplete   []string
}

// Seam for the monitor handle location, replaced in tests.
var handlePath = monitor.HandlePath

// Status assembles the report.  Probe failures degrade to fallback
// figures rather than failing the command; status must work on a
// half-broken host, that is when it is needed most.
func Status(octx *orchestrator.Context, opts *Options) (*Report, error) {
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return nil, err
		}
	}

	facts := octx.Profiler.Facts()
	available, err := octx.Profiler.AvailableRAMMB()
	if err != nil {
		log.Debugf("Usage probe unavailable: %v", err)
	}

	records, err := reg.List()
	if err != nil {
		return nil, err
	}
	activeAlias, err := reg.ActiveAlias()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Facts:       facts,
		Tier:        plan.DeriveTier(facts.TotalRAMMB),
		AvailableMB: available,
		Records:     records,
		ActiveAlias: activeAlias,
	}

	if path, err := handlePath(); err == nil {
		report.MonitorPID, report.MonitorAlive = monitor.HandleAlive(path)
	}

	if octx.Journal != nil {
		report.Incomplete = octx.Journal.Incomplete()
	}
	return report, nil
}
