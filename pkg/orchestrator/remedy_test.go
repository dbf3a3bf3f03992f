// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package orchestrator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

type fakeProfiler struct {
	goos        string
	flavor      string
	flavorErr   error
	invalidated []string
}

func (f *fakeProfiler) OS() string                     { return f.goos }
func (f *fakeProfiler) RuntimeFlavor() (string, error) { return f.flavor, f.flavorErr }
func (f *fakeProfiler) InvalidateRuntime()             { f.invalidated = append(f.invalidated, "runtime") }
func (f *fakeProfiler) InvalidateUsage()               { f.invalidated = append(f.invalidated, "usage") }

type fakeRun struct {
	commands [][]string
	answer   func(cmdName string, args ...string) (string, string, error)
}

func (f *fakeRun) run(cmdName string, args ...string) (string, string, error) {
	f.commands = append(f.commands, append([]string{cmdName}, args...))
	if f.answer == nil {
		return "", "", nil
	}
	return f.answer(cmdName, args...)
}

func (f *fakeRun) saw(fragment string) bool {
	for _, command := range f.commands {
		if strings.Contains(strings.Join(command, " "), fragment) {
			return true
		}
	}
	return false
}

func testRemediator(profiler *fakeProfiler, run *fakeRun) (*Remediator, *[]int) {
	killed := &[]int{}
	r := &Remediator{
		octx: &Context{
			ClusterConfig: &types.ClusterConfig{
				Name:          "klab",
				APIServerPort: 6443,
				RegistryPort:  5000,
			},
		},
		profiler: profiler,
		run:      run.run,
		kill: func(pid int) error {
			*killed = append(*killed, pid)
			return nil
		},
	}
	return r, killed
}

// TestStartRuntimeLinuxPodman tests runtime recovery on Linux
// GIVEN a podman flavor on a Linux host
//
//	WHEN the runtime remediation runs
//	THEN the user socket is started and the liveness probes are
//	invalidated
func TestStartRuntimeLinuxPodman(t *testing.T) {
	profiler := &fakeProfiler{goos: "linux", flavor: "podman"}
	run := &fakeRun{}
	r, _ := testRemediator(profiler, run)

	assert.NoError(t, r.startRuntime())
	assert.True(t, run.saw("systemctl --user start podman.socket"))
	assert.Contains(t, profiler.invalidated, "runtime")
}

// TestStartRuntimeDarwinPodman tests runtime recovery on macOS
func TestStartRuntimeDarwinPodman(t *testing.T) {
	profiler := &fakeProfiler{goos: "darwin", flavor: "podman"}
	run := &fakeRun{}
	r, _ := testRemediator(profiler, run)

	assert.NoError(t, r.startRuntime())
	assert.True(t, run.saw("podman machine start"))
}

// TestStartRuntimeReportsStderr tests failure surfacing
func TestStartRuntimeReportsStderr(t *testing.T) {
	profiler := &fakeProfiler{goos: "linux", flavor: "docker"}
	run := &fakeRun{answer: func(string, ...string) (string, string, error) {
		return "", "Failed to start docker.service: access denied\n", errors.New("exit status 1")
	}}
	r, _ := testRemediator(profiler, run)

	err := r.startRuntime()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Empty(t, profiler.invalidated)
}

// TestFreePortsTerminatesClusterProcess tests reclaiming a held port
// GIVEN the API server port held by a leftover cluster process
//
//	WHEN the port remediation runs
//	THEN that process is terminated and nothing else is touched
func TestFreePortsTerminatesClusterProcess(t *testing.T) {
	run := &fakeRun{answer: func(cmdName string, args ...string) (string, string, error) {
		switch cmdName {
		case "lsof":
			if args[len(args)-1] == "tcp:6443" {
				return "4242\n", "", nil
			}
			return "", "", errors.New("exit status 1")
		case "ps":
			return "k3s-server\n", "", nil
		}
		return "", "", nil
	}}
	r, killed := testRemediator(&fakeProfiler{}, run)

	assert.NoError(t, r.freePorts())
	assert.Equal(t, []int{4242}, *killed)
}

// TestFreePortsRefusesUnknownProcess tests the kill guard
// GIVEN a port held by something that is not a cluster process
//
//	WHEN the port remediation runs
//	THEN nothing is terminated and the holder is named
func TestFreePortsRefusesUnknownProcess(t *testing.T) {
	run := &fakeRun{answer: func(cmdName string, args ...string) (string, string, error) {
		switch cmdName {
		case "lsof":
			return "31337\n", "", nil
		case "ps":
			return "postgres\n", "", nil
		}
		return "", "", nil
	}}
	r, killed := testRemediator(&fakeProfiler{}, run)

	err := r.freePorts()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Empty(t, *killed)
}

// TestFreePortsNothingHeld tests remediation with free ports
func TestFreePortsNothingHeld(t *testing.T) {
	run := &fakeRun{answer: func(string, ...string) (string, string, error) {
		return "", "", errors.New("exit status 1")
	}}
	r, killed := testRemediator(&fakeProfiler{}, run)

	err := r.freePorts()
	assert.Error(t, err, "remediation that freed nothing must not report success")
	assert.Empty(t, *killed)
}

// TestPruneStorage tests the low memory remediation
func TestPruneStorage(t *testing.T) {
	profiler := &fakeProfiler{flavor: "docker"}
	run := &fakeRun{}
	r, _ := testRemediator(profiler, run)

	assert.NoError(t, r.pruneStorage())
	assert.True(t, run.saw("docker system prune --force"))
	assert.Contains(t, profiler.invalidated, "usage")
}

// TestPruneNetworks tests the network conflict remediation
func TestPruneNetworks(t *testing.T) {
	profiler := &fakeProfiler{flavor: "podman"}
	run := &fakeRun{}
	r, _ := testRemediator(profiler, run)

	assert.NoError(t, r.pruneNetworks())
	assert.True(t, run.saw("podman network prune --force"))
}

// TestTableCoverage tests which kinds are remediable
// GIVEN the standard recovery table
//
//	WHEN it is consulted
//	THEN the transient infrastructure kinds have entries and
//	everything else is retried bare
func TestTableCoverage(t *testing.T) {
	r, _ := testRemediator(&fakeProfiler{}, &fakeRun{})
	table := r.Table()

	for _, kind := range []klaberr.Kind{
		klaberr.KindRuntimeNotRunning,
		klaberr.KindPortInUse,
		klaberr.KindInsufficientMemory,
		klaberr.KindNetworkConflict,
	} {
		_, ok := table[kind]
		assert.True(t, ok, "expected a remediation for %s", kind)
	}

	for _, kind := range []klaberr.Kind{
		klaberr.KindTimeout,
		klaberr.KindRuntimeUnavailable,
		klaberr.KindConfigInvalid,
	} {
		_, ok := table[kind]
		assert.False(t, ok, "no remediation should exist for %s", kind)
	}
}

// TestIsClusterProcess tests the process name guard
func TestIsClusterProcess(t *testing.T) {
	assert.True(t, isClusterProcess("k3d-proxy"))
	assert.True(t, isClusterProcess("k3s-server"))
	assert.True(t, isClusterProcess("kube-apiserver"))
	assert.True(t, isClusterProcess("docker-proxy"))
	assert.False(t, isClusterProcess("postgres"))
	assert.False(t, isClusterProcess("java"))
}
