// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package system

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// podmanInfo is the subset of `podman info` output the profiler
// cares about.
type podmanInfo struct {
	Host struct {
		Arch     string `json:"arch"`
		Cpus     int    `json:"cpus"`
		MemTotal int64  `json:"memTotal"`
		Os       string `json:"os"`
	} `json:"host"`
	Version struct {
		Version string `json:"Version"`
	} `json:"version"`
}

// dockerInfo is the subset of `docker info` output the profiler
// cares about.
type dockerInfo struct {
	NCPU          int    `json:"NCPU"`
	MemTotal      int64  `json:"MemTotal"`
	ServerVersion string `json:"ServerVersion"`
	OSType        string `json:"OSType"`
	Architecture  string `json:"Architecture"`
}

// RuntimeInfo describes the container runtime backing cluster
// provisioning.
type RuntimeInfo struct {
	Flavor     string
	Version    string
	Running    bool
	CPUs       int
	MemTotalMB int64
}

// RuntimeFlavor reports which container runtime is installed, podman
// preferred over docker.  An unknown flavor comes back with a
// RuntimeUnavailable error; callers decide how hard to fail.
func (p *Profiler) RuntimeFlavor() (string, error) {
	flavor, err := cache.Memoize(p.cache, CacheKeyRuntimeFlavor, constants.ProbeTTLFacts, nil, p.probeRuntimeFlavor)
	if err != nil {
		p.errs.RecordError("system.RuntimeFlavor", err)
		return constants.RuntimeFlavorUnknown, err
	}
	return flavor, nil
}

// RuntimeInfo reports whether the container runtime answers, and with
// what resources.  A runtime that is installed but not answering is a
// valid reading, not an error.
func (p *Profiler) RuntimeInfo() (RuntimeInfo, error) {
	info, err := cache.Memoize(p.cache, CacheKeyRuntimeLiveness, constants.ProbeTTLLiveness, []string{CacheKeyRuntimeFlavor}, p.probeRuntimeInfo)
	if err != nil {
		p.errs.RecordError("system.RuntimeInfo", err)
		return info, err
	}
	return info, nil
}

// RuntimeRunning reports whether the container runtime is up.
func (p *Profiler) RuntimeRunning() (bool, error) {
	info, err := p.RuntimeInfo()
	return info.Running, err
}

func (p *Profiler) probeRuntimeFlavor() (string, error) {
	if _, err := p.lookPath("podman"); err == nil {
		return constants.RuntimeFlavorPodman, nil
	}
	if _, err := p.lookPath("docker"); err == nil {
		return constants.RuntimeFlavorDocker, nil
	}
	return constants.RuntimeFlavorUnknown, klaberr.New(klaberr.KindRuntimeUnavailable, "probe", "neither podman nor docker found on the PATH")
}

func (p *Profiler) probeRuntimeInfo() (RuntimeInfo, error) {
	flavor, err := p.RuntimeFlavor()
	if err != nil {
		return RuntimeInfo{Flavor: flavor}, err
	}

	switch flavor {
	case constants.RuntimeFlavorPodman:
		stdout, stderr, err := p.runCommand("podman", "info", "--format", "json")
		if err != nil {
			log.Debugf("podman info failed: %v: %s", err, stderr)
			return RuntimeInfo{Flavor: flavor}, nil
		}

		info := podmanInfo{}
		if err = json.Unmarshal([]byte(stdout), &info); err != nil {
			return RuntimeInfo{Flavor: flavor}, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return RuntimeInfo{
			Flavor:     flavor,
			Version:    info.Version.Version,
			Running:    true,
			CPUs:       info.Host.Cpus,
			MemTotalMB: info.Host.MemTotal / (1024 * 1024),
		}, nil
	case constants.RuntimeFlavorDocker:
		stdout, stderr, err := p.runCommand("docker", "info", "--format", "{{json .}}")
		if err != nil {
			log.Debugf("docker info failed: %v: %s", err, stderr)
			return RuntimeInfo{Flavor: flavor}, nil
		}

		info := dockerInfo{}
		if err = json.Unmarshal([]byte(stdout), &info); err != nil {
			return RuntimeInfo{Flavor: flavor}, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return RuntimeInfo{
			Flavor:     flavor,
			Version:    info.ServerVersion,
			Running:    true,
			CPUs:       info.NCPU,
			MemTotalMB: info.MemTotal / (1024 * 1024),
		}, nil
	}

	return RuntimeInfo{Flavor: flavor}, klaberr.New(klaberr.KindRuntimeUnavailable, "probe", "no container runtime to probe")
}
