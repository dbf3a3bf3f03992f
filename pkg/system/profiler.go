// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package system

import (
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/unix"
)

// Cache keys for the probes.  Mutating operations invalidate these to
// force the next probe to hit the system again.
const (
	CacheKeyTotalRAM          = "total-ram"
	CacheKeyAvailableRAM      = "available-ram"
	CacheKeyCPUCores          = "cpu-cores"
	CacheKeyRuntimeFlavor     = "runtime-flavor"
	CacheKeyRuntimeLiveness   = "runtime-liveness"
	CacheKeyCompetingClusters = "competing-clusters"
)

// Facts is a snapshot of the host taken through the profiler, with
// fallbacks already applied.  It is what gets persisted into the user
// configuration and rendered by status.
type Facts struct {
	OS            string
	Arch          string
	TotalRAMMB    int64
	CPUCores      int
	RuntimeFlavor string
}

// Profiler answers questions about the host.  Probes are memoized
// through the cache and never hard-fail: when the host cannot be
// probed the documented fallback figure is returned along with a
// ProbeUnavailable error so callers can log and move on.
type Profiler struct {
	cache *cache.Cache
	errs  *klaberr.Stack

	// Probe seams, replaced in tests.
	goos       string
	goarch     string
	readFile   func(string) ([]byte, error)
	runCommand func(string, ...string) (string, string, error)
	lookPath   func(string) (string, error)
	dial       func(network string, addr string, timeout time.Duration) (net.Conn, error)
}

// NewProfiler creates a profiler whose probes go through the given
// cache and record failures on the given error stack.
func NewProfiler(c *cache.Cache, errs *klaberr.Stack) *Profiler {
	return &Profiler{
		cache:      c,
		errs:       errs,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
		readFile:   os.ReadFile,
		runCommand: unix.RunCommand,
		lookPath:   exec.LookPath,
		dial:       net.DialTimeout,
	}
}

// OS returns the host operating system.
func (p *Profiler) OS() string {
	return p.goos
}

// Arch returns the host architecture.
func (p *Profiler) Arch() string {
	return p.goarch
}

// TotalRAMMB returns the total physical memory of the host in MB.  On
// probe failure the fallback figure is returned along with the error.
func (p *Profiler) TotalRAMMB() (int64, error) {
	ram, err := cache.Memoize(p.cache, CacheKeyTotalRAM, constants.ProbeTTLFacts, nil, p.probeTotalRAMMB)
	if err != nil {
		p.errs.RecordError("system.TotalRAMMB", err)
		return constants.FallbackTotalRAMMB, err
	}
	return ram, nil
}

// AvailableRAMMB returns an estimate of the memory available for new
// workloads.  The reading is short-lived and re-probed every few
// seconds.  On probe failure the total is returned along with the
// error so feasibility math degrades instead of failing.
func (p *Profiler) AvailableRAMMB() (int64, error) {
	avail, err := cache.Memoize(p.cache, CacheKeyAvailableRAM, constants.ProbeTTLUsage, []string{CacheKeyTotalRAM}, p.probeAvailableRAMMB)
	if err != nil {
		p.errs.RecordError("system.AvailableRAMMB", err)
		total, totalErr := p.TotalRAMMB()
		if totalErr != nil {
			return constants.FallbackTotalRAMMB, err
		}
		return total, err
	}
	return avail, nil
}

// CPUCores returns the number of logical CPUs.  On probe failure the
// fallback figure is returned along with the error.
func (p *Profiler) CPUCores() (int, error) {
	cores, err := cache.Memoize(p.cache, CacheKeyCPUCores, constants.ProbeTTLFacts, nil, p.probeCPUCores)
	if err != nil {
		p.errs.RecordError("system.CPUCores", err)
		return constants.FallbackCPUCores, err
	}
	return cores, nil
}

// Facts gathers every system fact with fallbacks applied.  It never
// fails; probe errors are logged and recorded on the error stack.
func (p *Profiler) Facts() Facts {
	ram, err := p.TotalRAMMB()
	if err != nil {
		log.Debugf("Memory probe unavailable, assuming %dMB: %v", ram, err)
	}
	cores, err := p.CPUCores()
	if err != nil {
		log.Debugf("CPU probe unavailable, assuming %d cores: %v", cores, err)
	}
	flavor, err := p.RuntimeFlavor()
	if err != nil {
		log.Debugf("Container runtime probe unavailable: %v", err)
	}

	return Facts{
		OS:            p.OS(),
		Arch:          p.Arch(),
		TotalRAMMB:    ram,
		CPUCores:      cores,
		RuntimeFlavor: flavor,
	}
}

// InvalidateUsage drops the short-lived usage readings so the next
// probe hits the system.  Called after operations that change the
// memory picture, like starting or stopping a cluster.
func (p *Profiler) InvalidateUsage() {
	p.cache.Invalidate(CacheKeyAvailableRAM)
	p.cache.Invalidate(CacheKeyCompetingClusters)
}

// InvalidateRuntime drops the runtime probes after remediation has
// started or restarted the container runtime.
func (p *Profiler) InvalidateRuntime() {
	p.cache.Invalidate(CacheKeyRuntimeFlavor)
	p.cache.Invalidate(CacheKeyRuntimeLiveness)
}
