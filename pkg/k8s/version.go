// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package k8s

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/rest"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// GetServerVersion returns the version information reported by the
// API server.
func GetServerVersion(restConf *rest.Config) (*version.Info, error) {
	dc, err := discovery.NewDiscoveryClientForConfig(restConf)
	if err != nil {
		return nil, err
	}

	inf, err := dc.ServerVersion()
	if err != nil {
		return nil, err
	}
	return inf, err
}

// VersionInfoToString renders the reported version as a bare semantic
// version.  Distribution suffixes like "+k3s1" are kept; semver treats
// them as build metadata.
func VersionInfoToString(v *version.Info) string {
	return strings.TrimPrefix(v.GitVersion, "v")
}

// VerifyServerVersion checks the reported server version against the
// Kubernetes releases klab supports.
func VerifyServerVersion(info *version.Info) error {
	v, err := semver.NewVersion(VersionInfoToString(info))
	if err != nil {
		return klaberr.New(klaberr.KindRuntimeUnavailable, "verify-server", "cannot parse the reported server version %q", info.GitVersion)
	}

	constraint, err := semver.NewConstraint(constants.KubeVersionConstraint)
	if err != nil {
		return err
	}

	if !constraint.Check(v) {
		return klaberr.New(klaberr.KindRuntimeUnavailable, "verify-server", "Kubernetes %s is outside the supported range %s", info.GitVersion, constants.KubeVersionConstraint)
	}
	return nil
}
