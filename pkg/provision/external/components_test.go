// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package external

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/client-go/kubernetes"
	kfake "k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// clusterClientStub captures manifest operations without a cluster.
type clusterClientStub struct {
	applied []string
	deleted []string
	waited  []string
}

func stubClusterClient(t *testing.T) *clusterClientStub {
	stub := &clusterClientStub{}
	origGet, origApply, origDelete, origWait := getKubeClient, applyManifestFunc, deleteManifestFunc, waitForDeployment

	getKubeClient = func(string) (*rest.Config, kubernetes.Interface, error) {
		return &rest.Config{}, kfake.NewSimpleClientset(), nil
	}
	applyManifestFunc = func(_ *rest.Config, path string) (int, error) {
		stub.applied = append(stub.applied, path)
		return 1, nil
	}
	deleteManifestFunc = func(_ *rest.Config, path string) error {
		stub.deleted = append(stub.deleted, path)
		return nil
	}
	waitForDeployment = func(_ kubernetes.Interface, namespace string, name string, _ int32) error {
		stub.waited = append(stub.waited, namespace+"/"+name)
		return nil
	}

	t.Cleanup(func() {
		getKubeClient, applyManifestFunc, deleteManifestFunc, waitForDeployment = origGet, origApply, origDelete, origWait
	})
	return stub
}

// stageManifest drops a minimal manifest for a component into the
// profile's storage and returns its path.
func stageManifest(t *testing.T, cc *types.ClusterConfig, component string) string {
	dir := filepath.Join(cc.StoragePath, "components")
	assert.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, component+".yaml")
	manifest := "apiVersion: v1\nkind: Namespace\nmetadata:\n  name: klab-" + component + "\n"
	assert.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

// TestInstallComponentManifest tests installing a manifest component
// GIVEN a dashboard manifest staged in the profile's storage
//
//	WHEN I call InstallComponent for the dashboard
//	THEN the staged manifest is applied to the cluster
func TestInstallComponentManifest(t *testing.T) {
	stub := stubClusterClient(t)
	cc := testClusterConfig(t)
	cc.StoragePath = t.TempDir()
	path := stageManifest(t, cc, "dashboard")
	eb, _ := scriptedBackend(cc, nil)

	err := eb.InstallComponent(context.Background(), "dashboard")
	assert.NoError(t, err)
	assert.Equal(t, []string{path}, stub.applied)
}

// TestInstallComponentNothingStaged tests installing with no manifest
// GIVEN a component that has no manifest staged
//
//	WHEN I call InstallComponent
//	THEN the component is enabled without anything being applied
func TestInstallComponentNothingStaged(t *testing.T) {
	stub := stubClusterClient(t)
	cc := testClusterConfig(t)
	cc.StoragePath = t.TempDir()
	eb, _ := scriptedBackend(cc, nil)

	err := eb.InstallComponent(context.Background(), "logging")
	assert.NoError(t, err)
	assert.Empty(t, stub.applied)
}

// TestInstallComponentBuiltin tests installing distribution components
// GIVEN components the distribution ships on its own
//
//	WHEN I call InstallComponent for metrics and ingress
//	THEN the backend waits on the matching deployments
func TestInstallComponentBuiltin(t *testing.T) {
	stub := stubClusterClient(t)
	eb, _ := scriptedBackend(testClusterConfig(t), nil)

	assert.NoError(t, eb.InstallComponent(context.Background(), "metrics"))
	assert.NoError(t, eb.InstallComponent(context.Background(), "ingress"))
	assert.Equal(t, []string{"kube-system/metrics-server", "kube-system/traefik"}, stub.waited)
	assert.Empty(t, stub.applied)
}

// TestInstallComponentRegistry tests verifying the provisioned registry
// GIVEN a manager that reports the cluster's registry
//
//	WHEN I call InstallComponent for the registry
//	THEN the verification passes without touching the cluster
func TestInstallComponentRegistry(t *testing.T) {
	stub := stubClusterClient(t)
	eb, calls := scriptedBackend(testClusterConfig(t), func(args []string) (string, string, error) {
		return `[{"name":"k3d-klab-registry"}]`, "", nil
	})

	err := eb.InstallComponent(context.Background(), "registry")
	assert.NoError(t, err)
	assert.Len(t, *calls, 1)
	assert.Empty(t, stub.applied)
	assert.Empty(t, stub.waited)
}

// TestInstallComponentRegistryMissing tests a lost registry
// GIVEN a manager that reports no registries at all
//
//	WHEN I call InstallComponent for the registry
//	THEN the verification fails as an installation failure
func TestInstallComponentRegistryMissing(t *testing.T) {
	stubClusterClient(t)
	eb, _ := scriptedBackend(testClusterConfig(t), func(args []string) (string, string, error) {
		return `[]`, "", nil
	})

	err := eb.InstallComponent(context.Background(), "registry")
	assert.Error(t, err)
	assert.Equal(t, klaberr.KindInstallationFailed, klaberr.KindOf(err))
}

// TestRemoveComponentManifest tests removing a manifest component
// GIVEN a dashboard manifest staged in the profile's storage
//
//	WHEN I call RemoveComponent for the dashboard
//	THEN the staged manifest's resources are deleted
func TestRemoveComponentManifest(t *testing.T) {
	stub := stubClusterClient(t)
	cc := testClusterConfig(t)
	cc.StoragePath = t.TempDir()
	path := stageManifest(t, cc, "dashboard")
	eb, _ := scriptedBackend(cc, nil)

	err := eb.RemoveComponent(context.Background(), "dashboard")
	assert.NoError(t, err)
	assert.Equal(t, []string{path}, stub.deleted)
}

// TestRemoveComponentIdempotent tests removing what was never installed
// GIVEN no staged manifest and a built-in component
//
//	WHEN I call RemoveComponent for each
//	THEN both calls succeed without touching the cluster
func TestRemoveComponentIdempotent(t *testing.T) {
	stub := stubClusterClient(t)
	cc := testClusterConfig(t)
	cc.StoragePath = t.TempDir()
	eb, _ := scriptedBackend(cc, nil)

	assert.NoError(t, eb.RemoveComponent(context.Background(), "monitoring"))
	assert.NoError(t, eb.RemoveComponent(context.Background(), "metrics"))
	assert.NoError(t, eb.RemoveComponent(context.Background(), "registry"))
	assert.Empty(t, stub.deleted)
	assert.Empty(t, stub.waited)
}
