// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package cluster manages cluster profiles: creating them, switching
// between them, backing them up, and listing them.  Profiles are
// registry records; bringing the actual cluster up or down is the
// job of install, start, and stop.
package cluster

import (
	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/registry"
)

// Options name the profile a cluster operation works on.
type Options struct {
	// Alias names the profile.  Operations that allow it treat an
	// empty alias as the active profile.
	Alias string

	// MemorySpec is the memory budget for a new profile, in
	// human-readable form such as 4Gi.
	MemorySpec string

	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

func resolveRegistry(opts *Options) (*registry.Registry, error) {
	if opts.Registry != nil {
		return opts.Registry, nil
	}
	return registry.New()
}

// Create registers a new cluster profile with its own storage
// directory and port allocations.  The cluster itself is provisioned
// later by install.
func Create(opts *Options) (*registry.Record, error) {
	reg, err := resolveRegistry(opts)
	if err != nil {
		return nil, err
	}

	memorySpec := opts.MemorySpec
	if memorySpec == "" {
		memorySpec = constants.DefaultMemorySpec
	}

	record, err := reg.Create(opts.Alias, memorySpec)
	if err != nil {
		return nil, err
	}

	log.Infof("Created cluster profile %s with %s of memory (API server port %d, registry port %d)",
		record.Alias, record.Config.MemorySpec, record.Config.APIServerPort, record.Config.RegistryPort)
	return record, nil
}

// Switch makes the named profile active and repoints the managed
// kubeconfig link at it.
func Switch(opts *Options) error {
	reg, err := resolveRegistry(opts)
	if err != nil {
		return err
	}

	degraded, err := reg.Switch(opts.Alias)
	if err != nil {
		return err
	}
	if degraded {
		log.Warnf("Switched to cluster %s, but its kubeconfig could not be restored; install or start the cluster to regenerate it", opts.Alias)
		return nil
	}
	log.Infof("Switched to cluster %s", opts.Alias)
	return nil
}

// Backup archives the named profile's registry record and storage
// directory.  It returns the archive location.
func Backup(opts *Options) (string, error) {
	reg, err := resolveRegistry(opts)
	if err != nil {
		return "", err
	}

	record, err := reg.Resolve(opts.Alias)
	if err != nil {
		return "", err
	}

	path, err := reg.Backup(record.Alias)
	if err != nil {
		return "", err
	}

	log.Infof("Backed up cluster profile %s to %s", record.Alias, path)
	return path, nil
}

// List returns every registered profile and the active alias.
func List(opts *Options) ([]registry.Record, string, error) {
	reg, err := resolveRegistry(opts)
	if err != nil {
		return nil, "", err
	}

	records, err := reg.List()
	if err != nil {
		return nil, "", err
	}
	active, err := reg.ActiveAlias()
	if err != nil {
		return nil, "", err
	}
	return records, active, nil
}
