// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.
package none

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/provision"
)

const (
	BackendName = "none"
)

// NoneBackend adopts a cluster that something else manages.  It never
// creates, starts, stops, or destroys anything; it only points the
// tool at an existing kubeconfig.
type NoneBackend struct {
	kubeconfigPath string
}

func CreateBackend(config *types.Config, clusterConfig *types.ClusterConfig) (provision.Backend, error) {
	if clusterConfig.KubeconfigPath == "" {
		return nil, klaberr.New(klaberr.KindConfigMissing, "provision", "the none backend needs an existing kubeconfig file")
	}
	return &NoneBackend{
		kubeconfigPath: clusterConfig.KubeconfigPath,
	}, nil
}

func (nb *NoneBackend) Verify(ctx context.Context) error {
	return nil
}

func (nb *NoneBackend) Provision(ctx context.Context) (bool, error) {
	if _, err := os.Stat(nb.kubeconfigPath); err != nil {
		return false, klaberr.New(klaberr.KindConfigMissing, "cluster provision", "kubeconfig %s does not exist", nb.kubeconfigPath)
	}
	return true, nil
}

func (nb *NoneBackend) Start(ctx context.Context) error {
	return nil
}

func (nb *NoneBackend) Stop(ctx context.Context) error {
	return nil
}

func (nb *NoneBackend) Delete(ctx context.Context) error {
	return nil
}

func (nb *NoneBackend) Running(ctx context.Context) (bool, error) {
	return true, nil
}

// InstallComponent does nothing.  Whatever manages the adopted
// cluster manages its components too.
func (nb *NoneBackend) InstallComponent(ctx context.Context, component string) error {
	log.Debugf("The adopted cluster manages its own components; not installing %s", component)
	return nil
}

func (nb *NoneBackend) RemoveComponent(ctx context.Context, component string) error {
	log.Debugf("The adopted cluster manages its own components; not removing %s", component)
	return nil
}

func (nb *NoneBackend) KubeconfigPath() string {
	return nb.kubeconfigPath
}

// APIServerAddress reads the server URL of the current context out of
// the adopted kubeconfig.
func (nb *NoneBackend) APIServerAddress() string {
	kubeconfig, err := clientcmd.LoadFromFile(nb.kubeconfigPath)
	if err != nil {
		return ""
	}

	context, ok := kubeconfig.Contexts[kubeconfig.CurrentContext]
	if !ok {
		return ""
	}
	cluster, ok := kubeconfig.Clusters[context.Cluster]
	if !ok {
		return ""
	}
	return cluster.Server
}

func (nb *NoneBackend) Close() error {
	return nil
}
