// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package k8s

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/rest"
	crtpkg "sigs.k8s.io/controller-runtime/pkg/client"
)

// newClientFunc builds the cluster client used to apply manifests.
// Tests replace it.
var newClientFunc = func(restConf *rest.Config) (crtpkg.Client, error) {
	return crtpkg.New(restConf, crtpkg.Options{})
}

// ApplyManifest creates every resource described by the manifest file,
// skipping resources that already exist.  It returns the number of
// resources that were newly created.
func ApplyManifest(restConf *rest.Config, path string) (int, error) {
	objs, err := ReadManifestFile(path)
	if err != nil {
		return 0, err
	}

	cli, err := newClientFunc(restConf)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range objs {
		ok, err := createIfNotExist(cli, &objs[i])
		if err != nil {
			return created, fmt.Errorf("failed to create %s %s: %w", objs[i].GetKind(), objs[i].GetName(), err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// DeleteManifest deletes every resource described by the manifest
// file, in reverse document order.  Resources that are already gone
// are ignored.
func DeleteManifest(restConf *rest.Config, path string) error {
	objs, err := ReadManifestFile(path)
	if err != nil {
		return err
	}

	cli, err := newClientFunc(restConf)
	if err != nil {
		return err
	}

	for i := len(objs) - 1; i >= 0; i-- {
		if err := cli.Delete(context.TODO(), &objs[i]); err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to delete %s %s: %w", objs[i].GetKind(), objs[i].GetName(), err)
		}
		log.Debugf("Deleted %s %s", objs[i].GetKind(), objs[i].GetName())
	}
	return nil
}

// createIfNotExist creates a single resource, reporting whether a
// create actually happened.  Server-populated metadata is stripped
// first so that manifests exported from a live cluster apply cleanly.
func createIfNotExist(cli crtpkg.Client, u *unstructured.Unstructured) (bool, error) {
	unstructured.RemoveNestedField(u.Object, "metadata", "resourceVersion")
	unstructured.RemoveNestedField(u.Object, "metadata", "uid")
	unstructured.RemoveNestedField(u.Object, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(u.Object, "metadata", "ownerReferences")

	err := cli.Create(context.TODO(), u)
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			log.Debugf("%s %s already exists", u.GetKind(), u.GetName())
			return false, nil
		}
		return false, err
	}
	log.Debugf("Created %s %s", u.GetKind(), u.GetName())
	return true, nil
}
