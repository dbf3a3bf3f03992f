// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package health probes the pieces a working cluster depends on.
// Every check runs even when an earlier one fails, so the report is
// complete; the first failing check classifies the process exit.
package health

import (
	"fmt"
	"os"
	"strings"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/k8s"
	k8sclient "github.com/oracle-cne/klab/pkg/k8s/client"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/registry"
)

// Check is one probe's outcome.  A nil Err with a Detail is healthy;
// Err carries the classified failure.
type Check struct {
	Name   string
	Detail string
	Err    error
}

// Options control one health run.
type Options struct {
	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Seams for the API server probe, replaced in tests.
var (
	getKubeClient    = k8sclient.GetKubeClient
	getServerVersion = k8s.GetServerVersion
)

// Health runs the full check sequence.
func Health(octx *orchestrator.Context, opts *Options) ([]Check, error) {
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return nil, err
		}
	}

	return []Check{
		runtimeCheck(octx),
		clusterCheck(reg),
		competitionCheck(octx),
		memoryCheck(octx),
	}, nil
}

// FirstFailure returns the error of the first failing check, which
// determines the exit class.
func FirstFailure(checks []Check) error {
	for _, check := range checks {
		if check.Err != nil {
			return check.Err
		}
	}
	return nil
}

func runtimeCheck(octx *orchestrator.Context) Check {
	check := Check{Name: "container runtime"}

	running, err := octx.Profiler.RuntimeRunning()
	if err != nil {
		check.Err = err
		return check
	}

	flavor, _ := octx.Profiler.RuntimeFlavor()
	if !running {
		check.Err = klaberr.New(klaberr.KindRuntimeNotRunning, "health", "the %s runtime is installed but not running", flavor)
		return check
	}
	check.Detail = flavor + " is running"
	return check
}

// clusterCheck probes the active profile's API server with one
// bounded request.  Having no profile, or a deliberately stopped
// cluster, is healthy; a Running profile that does not answer is not.
func clusterCheck(reg *registry.Registry) Check {
	check := Check{Name: "kubernetes api"}

	record, err := reg.Active()
	if err != nil {
		check.Err = err
		return check
	}
	if record == nil {
		check.Detail = "no cluster profile exists"
		return check
	}
	if record.Status != registry.StatusRunning {
		check.Detail = fmt.Sprintf("cluster %s is %s", record.Alias, strings.ToLower(string(record.Status)))
		return check
	}

	restConfig, _, err := getKubeClient(record.Config.KubeconfigPath)
	if err != nil {
		check.Err = klaberr.Wrap(klaberr.KindConfigMissing, "health", err)
		return check
	}
	restConfig.Timeout = constants.HealthProbeTimeout

	info, err := getServerVersion(restConfig)
	if err != nil {
		kind := klaberr.KindProbeUnavailable
		if os.IsTimeout(err) {
			kind = klaberr.KindTimeout
		}
		check.Err = klaberr.New(kind, "health", "the API server of cluster %s did not answer: %v", record.Alias, err)
		return check
	}

	version := k8s.VersionInfoToString(info)
	if err = k8s.VerifyServerVersion(info); err != nil {
		check.Err = err
		return check
	}
	check.Detail = fmt.Sprintf("cluster %s answers with Kubernetes %s", record.Alias, version)
	return check
}

// competitionCheck looks for other local cluster managers with live
// clusters.  They draw from the same memory pool and the same
// well-known ports, so a live foreign cluster is a conflict, not a
// curiosity.
func competitionCheck(octx *orchestrator.Context) Check {
	check := Check{Name: "competing clusters"}

	managers, err := octx.Profiler.CompetingClusters()
	if err != nil {
		check.Detail = "could not scan for other cluster managers"
		return check
	}

	foreign := make([]string, 0, len(managers))
	for _, manager := range managers {
		if manager != "klab" {
			foreign = append(foreign, manager)
		}
	}
	if len(foreign) > 0 {
		check.Err = klaberr.New(klaberr.KindNetworkConflict, "health", "other local cluster managers have live clusters: %s", strings.Join(foreign, ", "))
		return check
	}
	check.Detail = "none"
	return check
}

func memoryCheck(octx *orchestrator.Context) Check {
	check := Check{Name: "memory headroom"}

	available, err := octx.Profiler.AvailableRAMMB()
	if err != nil {
		check.Detail = "usage probe unavailable"
		return check
	}
	if available < constants.MonitorMemoryThresholdMB {
		check.Err = klaberr.New(klaberr.KindInsufficientMemory, "health", "only %dMB of memory is available, below the %dMB floor", available, constants.MonitorMemoryThresholdMB)
		return check
	}
	check.Detail = fmt.Sprintf("%dMB available", available)
	return check
}
