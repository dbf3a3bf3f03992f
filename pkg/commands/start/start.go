// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package start brings an existing cluster up through its backend and
// waits for it to answer.
package start

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/k8s"
	k8sclient "github.com/oracle-cne/klab/pkg/k8s/client"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/util/logutils"
)

// Options control one start.
type Options struct {
	// Alias names the profile to start.  Empty means the active one.
	Alias string

	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Seams for cluster readiness, replaced in tests.
var (
	getKubeClient     = k8sclient.GetKubeClient
	waitForAPIServer  = k8s.WaitForAPIServer
	waitForNodesReady = k8s.WaitForNodesReady
)

// Start brings the cluster up and records it as running once it
// answers.
func Start(octx *orchestrator.Context, opts *Options) error {
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
	if err == nil && running {
		log.Infof("Cluster %s is already running", record.Alias)
		return reg.SetStatus(record.Alias, registry.StatusRunning)
	}

	waiter := logutils.Waiter{
		Message: "Starting cluster " + record.Config.Name,
		WaitFunction: func(interface{}) error {
			if err := backend.Start(ctx); err != nil {
				return err
			}
			return clusterAnswers(backend, record.Config.Nodes)
		},
	}
	if logutils.WaitFor(logutils.Info, []*logutils.Waiter{&waiter}) {
		return waiter.Error
	}

	if err = reg.SetStatus(record.Alias, registry.StatusRunning); err != nil {
		return err
	}

	octx.Profiler.InvalidateUsage()
	log.Infof("Cluster %s is running", record.Alias)
	return nil
}

// clusterAnswers waits for the API server and the expected node
// count.
func clusterAnswers(backend provision.Backend, nodes int) error {
	restConfig, client, err := getKubeClient(backend.KubeconfigPath())
	if err != nil {
		return err
	}
	if err = waitForAPIServer(restConfig); err != nil {
		return err
	}
	return waitForNodesReady(client, nodes)
}
