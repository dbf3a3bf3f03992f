// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package k8s

import (
	"context"
	"fmt"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/util"
)

// Readiness window for the wait helpers.  Package variables so tests
// can shrink them.
var (
	readinessTimeout  = constants.ReadinessTimeout
	readinessInterval = constants.ReadinessInterval
)

// WaitForAPIServer polls the API server until it answers a version
// request, failing with a timeout error when the readiness window
// closes.
func WaitForAPIServer(restConf *rest.Config) error {
	_, _, err := util.LinearRetryImpl(func(arg interface{}) (interface{}, bool, error) {
		_, err := GetServerVersion(restConf)
		return nil, false, err
	}, nil, readinessInterval, readinessTimeout)
	if err != nil {
		return klaberr.Wrap(klaberr.KindTimeout, "wait-apiserver", err)
	}
	return nil
}

// WaitForNodesReady waits until the cluster reports at least the
// expected number of Ready nodes.
func WaitForNodesReady(client kubernetes.Interface, expected int) error {
	ready := 0
	_, _, err := util.LinearRetryImpl(func(arg interface{}) (interface{}, bool, error) {
		nodes, err := client.CoreV1().Nodes().List(context.TODO(), metav1.ListOptions{})
		if err != nil {
			return nil, false, err
		}
		ready = 0
		for i := range nodes.Items {
			if IsNodeReady(&nodes.Items[i]) {
				ready++
			}
		}
		if ready < expected {
			return nil, false, fmt.Errorf("%d of %d nodes are ready", ready, expected)
		}
		return nil, false, nil
	}, nil, readinessInterval, readinessTimeout)
	if err != nil {
		return klaberr.New(klaberr.KindTimeout, "wait-nodes", "%d of %d nodes became ready within %v", ready, expected, readinessTimeout)
	}
	return nil
}

// WaitForDeployment waits until a deployment has the expected number
// of updated, available replicas.
func WaitForDeployment(client kubernetes.Interface, namespace string, name string, expected int32) error {
	_, _, err := util.LinearRetryImpl(func(arg interface{}) (interface{}, bool, error) {
		dep, err := client.AppsV1().Deployments(namespace).Get(context.TODO(), name, metav1.GetOptions{})
		if err != nil {
			return nil, false, err
		}
		if dep.Status.UpdatedReplicas < expected || dep.Status.AvailableReplicas < expected {
			return nil, false, fmt.Errorf("deployment %s/%s has %d of %d replicas available", namespace, name, dep.Status.AvailableReplicas, expected)
		}
		return nil, false, nil
	}, nil, readinessInterval, readinessTimeout)
	if err != nil {
		return klaberr.New(klaberr.KindTimeout, "wait-deployment", "deployment %s/%s did not become available within %v", namespace, name, readinessTimeout)
	}
	return nil
}

// IsNodeReady checks if the node status condition is ready
func IsNodeReady(node *v1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == v1.NodeReady && cond.Status == v1.ConditionTrue {
			return true
		}
	}
	return false
}
