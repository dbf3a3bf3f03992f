// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package external

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/k8s"
	k8sclient "github.com/oracle-cne/klab/pkg/k8s/client"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/provision"
)

// builtinDeployments names the workloads the provisioned distribution
// already ships for a component.  Installing one of these components
// means waiting for its deployment rather than applying a manifest.
var builtinDeployments = map[string]struct {
	namespace string
	name      string
}{
	"metrics": {namespace: "kube-system", name: "metrics-server"},
	"ingress": {namespace: "kube-system", name: "traefik"},
}

// Seams for the cluster client machinery, replaced in tests.
var (
	getKubeClient      = k8sclient.GetKubeClient
	applyManifestFunc  = k8s.ApplyManifest
	deleteManifestFunc = k8s.DeleteManifest
	waitForDeployment  = k8s.WaitForDeployment
)

// InstallComponent installs one component into the running cluster.
// The registry is provisioned together with the cluster, so for it
// installation is a verification.  Components the distribution ships
// are waited on.  Everything else is applied from the manifest staged
// in the profile's storage.
func (eb *ExternalBackend) InstallComponent(ctx context.Context, component string) error {
	if component == "registry" {
		return eb.verifyRegistry(ctx)
	}

	if builtin, ok := builtinDeployments[component]; ok {
		_, client, err := getKubeClient(eb.KubeconfigPath())
		if err != nil {
			return klaberr.Wrap(klaberr.KindInstallationFailed, "install "+component, err)
		}
		return waitForDeployment(client, builtin.namespace, builtin.name, 1)
	}

	manifest := eb.componentManifest(component)
	if _, err := os.Stat(manifest); err != nil {
		// Nothing staged for this component.  Note it and move on
		// rather than failing the installation.
		log.Infof("No manifest is staged for the %s component; enabling it without installing anything", component)
		return nil
	}

	restConfig, _, err := getKubeClient(eb.KubeconfigPath())
	if err != nil {
		return klaberr.Wrap(klaberr.KindInstallationFailed, "install "+component, err)
	}

	created, err := applyManifestFunc(restConfig, manifest)
	if err != nil {
		return klaberr.Wrap(klaberr.KindInstallationFailed, "install "+component, err)
	}
	log.Debugf("Applied %s, %d resources created", manifest, created)
	return nil
}

// RemoveComponent deletes the resources a component's manifest
// describes.  Removing a component that was never installed, or one
// the distribution owns, is a no-op.
func (eb *ExternalBackend) RemoveComponent(ctx context.Context, component string) error {
	if component == "registry" {
		// The registry lives and dies with the cluster.
		return nil
	}
	if _, ok := builtinDeployments[component]; ok {
		log.Debugf("The %s component is part of the distribution and is left in place", component)
		return nil
	}

	manifest := eb.componentManifest(component)
	if _, err := os.Stat(manifest); err != nil {
		return nil
	}

	restConfig, _, err := getKubeClient(eb.KubeconfigPath())
	if err != nil {
		return klaberr.Wrap(klaberr.KindInstallationFailed, "remove "+component, err)
	}
	return deleteManifestFunc(restConfig, manifest)
}

// componentManifest returns where a component's manifest is staged
// for this cluster profile.
func (eb *ExternalBackend) componentManifest(component string) string {
	return filepath.Join(eb.clusterConfig.StoragePath, "components", component+".yaml")
}

// verifyRegistry confirms that the registry created alongside the
// cluster is known to the manager.
func (eb *ExternalBackend) verifyRegistry(ctx context.Context) error {
	stdout, stderr, err := eb.run(ctx, managerBinary, "registry", "list", "--output", "json")
	if err != nil {
		return provision.WrapCommandError("verify registry", stderr, err)
	}

	var registries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(stdout), &registries); err != nil {
		return klaberr.Wrap(klaberr.KindInstallationFailed, "verify registry", err)
	}

	want := eb.clusterConfig.Name + "-registry"
	for _, reg := range registries {
		if strings.Contains(reg.Name, want) {
			return nil
		}
	}
	return klaberr.New(klaberr.KindInstallationFailed, "verify registry", "the manager does not report a registry for cluster %s", eb.clusterConfig.Name)
}
