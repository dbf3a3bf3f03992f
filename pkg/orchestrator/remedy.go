// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package orchestrator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/unix"
)

// Remedy is one automatic corrective action tied to an error kind.
// The description is phrased in the past tense because it surfaces in
// error output as "attempted: <description>".
type Remedy struct {
	Description string
	Apply       func() error
}

// Processes holding a contested port are only terminated when they
// belong to a local cluster stack.  Anything else is reported to the
// user instead.
var clusterProcessPrefixes = []string{"k3d", "k3s", "kube", "docker-proxy", "containerd"}

// remediationProfiler is the slice of the system profiler that
// remediations consult.
type remediationProfiler interface {
	OS() string
	RuntimeFlavor() (string, error)
	InvalidateRuntime()
	InvalidateUsage()
}

// Remediator builds the standard recovery table over an orchestrator
// context.  Commands run through a seam so tests can observe
// remediation without touching the host.
type Remediator struct {
	octx     *Context
	profiler remediationProfiler
	run      func(cmdName string, args ...string) (string, string, error)
	kill     func(pid int) error
}

func NewRemediator(octx *Context) *Remediator {
	return &Remediator{
		octx:     octx,
		profiler: octx.Profiler,
		run:      unix.RunCommand,
		kill:     terminateProcess,
	}
}

// Table returns the recovery table.  Kinds without an entry are
// retried without remediation and propagate unchanged once attempts
// are exhausted.
func (r *Remediator) Table() map[klaberr.Kind]Remedy {
	return map[klaberr.Kind]Remedy{
		klaberr.KindRuntimeNotRunning: {
			Description: "started the container runtime",
			Apply:       r.startRuntime,
		},
		klaberr.KindPortInUse: {
			Description: "terminated the process holding the cluster ports",
			Apply:       r.freePorts,
		},
		klaberr.KindInsufficientMemory: {
			Description: "pruned unused container storage",
			Apply:       r.pruneStorage,
		},
		klaberr.KindNetworkConflict: {
			Description: "pruned unused container networks",
			Apply:       r.pruneNetworks,
		},
	}
}

// startRuntime brings the detected container runtime up.  How that is
// done depends on the flavor and the host OS; on failure the caller
// falls back to a plain retry.
func (r *Remediator) startRuntime() error {
	flavor, err := r.profiler.RuntimeFlavor()
	if err != nil {
		return err
	}

	var cmdName string
	var args []string
	switch {
	case flavor == constants.RuntimeFlavorPodman && r.profiler.OS() == "darwin":
		cmdName, args = "podman", []string{"machine", "start"}
	case flavor == constants.RuntimeFlavorPodman:
		cmdName, args = "systemctl", []string{"--user", "start", "podman.socket"}
	case flavor == constants.RuntimeFlavorDocker && r.profiler.OS() == "darwin":
		cmdName, args = "open", []string{"-a", "Docker"}
	case flavor == constants.RuntimeFlavorDocker:
		cmdName, args = "systemctl", []string{"start", "docker"}
	default:
		return fmt.Errorf("no way to start runtime %s", flavor)
	}

	log.Debugf("Starting %s with %s %s", flavor, cmdName, strings.Join(args, " "))
	if _, stderr, err := r.run(cmdName, args...); err != nil {
		if stderr != "" {
			return fmt.Errorf("%s", strings.TrimSpace(stderr))
		}
		return err
	}

	r.profiler.InvalidateRuntime()
	return nil
}

// freePorts finds the processes bound to the cluster's configured
// ports and terminates the ones that belong to a local cluster stack.
// A port held by an unrelated process is never killed; the holder is
// named so the user can resolve the collision.
func (r *Remediator) freePorts() error {
	if r.octx.ClusterConfig == nil {
		return fmt.Errorf("no cluster ports are configured")
	}

	freed := false
	for _, port := range []uint16{r.octx.ClusterConfig.APIServerPort, r.octx.ClusterConfig.RegistryPort} {
		if port == 0 {
			continue
		}
		didFree, err := r.freePort(port)
		if err != nil {
			return err
		}
		freed = freed || didFree
	}

	if !freed {
		return fmt.Errorf("no process holding the cluster ports could be terminated")
	}
	return nil
}

func (r *Remediator) freePort(port uint16) (bool, error) {
	// lsof exits non-zero when nothing holds the port.
	stdout, _, err := r.run("lsof", "-t", "-i", fmt.Sprintf("tcp:%d", port))
	if err != nil {
		return false, nil
	}

	freed := false
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			continue
		}

		name, _, err := r.run("ps", "-o", "comm=", "-p", strconv.Itoa(pid))
		if err != nil {
			continue
		}
		name = strings.TrimSpace(name)

		if !isClusterProcess(name) {
			return false, fmt.Errorf("port %d is held by %s (pid %d), which does not look like a cluster process", port, name, pid)
		}

		log.Infof("Terminating %s (pid %d) holding port %d", name, pid, port)
		if err := r.kill(pid); err != nil {
			return false, err
		}
		freed = true
	}
	return freed, nil
}

// pruneStorage reclaims disk and memory from the container runtime.
func (r *Remediator) pruneStorage() error {
	flavor, err := r.profiler.RuntimeFlavor()
	if err != nil {
		return err
	}

	if _, stderr, err := r.run(flavor, "system", "prune", "--force"); err != nil {
		if stderr != "" {
			return fmt.Errorf("%s", strings.TrimSpace(stderr))
		}
		return err
	}

	r.profiler.InvalidateUsage()
	return nil
}

// pruneNetworks removes unused container networks, the usual cause of
// address-pool collisions when stale clusters left networks behind.
func (r *Remediator) pruneNetworks() error {
	flavor, err := r.profiler.RuntimeFlavor()
	if err != nil {
		return err
	}

	if _, stderr, err := r.run(flavor, "network", "prune", "--force"); err != nil {
		if stderr != "" {
			return fmt.Errorf("%s", strings.TrimSpace(stderr))
		}
		return err
	}
	return nil
}

func isClusterProcess(name string) bool {
	base := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range clusterProcessPrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

func terminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}
