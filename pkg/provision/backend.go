// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package provision

import (
	"context"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// Backend provisions and controls the lifecycle of one cluster.  The
// provisioning internals are opaque to the orchestrator; it sees only
// this interface.
type Backend interface {
	// Verify checks that the tooling the backend depends on is
	// installed and recent enough, before anything is mutated.
	Verify(ctx context.Context) error

	// Provision brings the cluster into existence.  It reports
	// whether the cluster already existed.
	Provision(ctx context.Context) (bool, error)

	// Start brings an existing cluster up.
	Start(ctx context.Context) error

	// Stop halts the cluster without destroying it.
	Stop(ctx context.Context) error

	// Delete tears the cluster down entirely.  Deleting a cluster
	// that does not exist is not an error; teardown must be safe
	// to repeat.
	Delete(ctx context.Context) error

	// Running reports whether the cluster is up.
	Running(ctx context.Context) (bool, error)

	// InstallComponent installs one optional component into a
	// running cluster.
	InstallComponent(ctx context.Context, component string) error

	// RemoveComponent removes a component.  Removing a component
	// that was never installed is not an error.
	RemoveComponent(ctx context.Context, component string) error

	// KubeconfigPath returns the location of the cluster's
	// kubeconfig once provisioned.
	KubeconfigPath() string

	// APIServerAddress returns the URL of the API server.
	APIServerAddress() string

	// Close releases any resources held by the backend.
	Close() error
}

type CreateFunc func(*types.Config, *types.ClusterConfig) (Backend, error)

var backends = map[string]CreateFunc{}

// RegisterBackend makes a backend available by name.  Backends
// register themselves from the command wiring so that importing this
// package never drags in their dependencies.
func RegisterBackend(name string, ftor CreateFunc) {
	backends[name] = ftor
}

// CreateBackend instantiates the backend named by the cluster
// configuration.
func CreateBackend(config *types.Config, clusterConfig *types.ClusterConfig) (Backend, error) {
	ftor, ok := backends[clusterConfig.Backend]
	if !ok {
		return nil, klaberr.New(klaberr.KindConfigInvalid, "provision", "no implementation exists for the %s backend", clusterConfig.Backend)
	}

	return ftor(config, clusterConfig)
}
