// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package system

import (
	"strconv"
	"strings"

	"github.com/oracle-cne/klab/pkg/klaberr"
)

// probeTotalRAMMB reads the total physical memory from the host.
func (p *Profiler) probeTotalRAMMB() (int64, error) {
	switch p.goos {
	case "linux":
		contents, err := p.readFile("/proc/meminfo")
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return parseMemInfoMB(string(contents), "MemTotal")
	case "darwin":
		stdout, _, err := p.runCommand("sysctl", "-n", "hw.memsize")
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		memBytes, err := strconv.ParseInt(strings.TrimSpace(stdout), 10, 64)
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return memBytes / (1024 * 1024), nil
	}
	return 0, klaberr.New(klaberr.KindProbeUnavailable, "probe", "no memory probe for %s", p.goos)
}

// probeAvailableRAMMB reads the memory available for new workloads.
// Only Linux exposes a direct reading; elsewhere the probe reports
// unavailable and callers degrade to the total.
func (p *Profiler) probeAvailableRAMMB() (int64, error) {
	if p.goos != "linux" {
		return 0, klaberr.New(klaberr.KindProbeUnavailable, "probe", "no available-memory probe for %s", p.goos)
	}

	contents, err := p.readFile("/proc/meminfo")
	if err != nil {
		return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
	}
	return parseMemInfoMB(string(contents), "MemAvailable")
}

// probeCPUCores counts the logical CPUs of the host.
func (p *Profiler) probeCPUCores() (int, error) {
	switch p.goos {
	case "linux":
		contents, err := p.readFile("/proc/cpuinfo")
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return parseCPUInfoCores(string(contents))
	case "darwin":
		stdout, _, err := p.runCommand("sysctl", "-n", "hw.ncpu")
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		cores, err := strconv.Atoi(strings.TrimSpace(stdout))
		if err != nil {
			return 0, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
		}
		return cores, nil
	}
	return 0, klaberr.New(klaberr.KindProbeUnavailable, "probe", "no CPU probe for %s", p.goos)
}

// parseMemInfoMB extracts a field from /proc/meminfo contents and
// converts it to MB.  Fields are formatted as "MemTotal: 16316412 kB".
func parseMemInfoMB(contents string, field string) (int64, error) {
	for _, line := range strings.Split(contents, "\n") {
		name, rest, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(name) != field {
			continue
		}

		parts := strings.Fields(rest)
		if len(parts) < 1 {
			break
		}
		kb, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			break
		}
		return kb / 1024, nil
	}
	return 0, klaberr.New(klaberr.KindProbeUnavailable, "probe", "%s not found in meminfo", field)
}

// parseCPUInfoCores counts the processor stanzas in /proc/cpuinfo
// contents.
func parseCPUInfoCores(contents string) (int, error) {
	cores := 0
	for _, line := range strings.Split(contents, "\n") {
		if strings.HasPrefix(line, "processor") {
			cores = cores + 1
		}
	}
	if cores == 0 {
		return 0, klaberr.New(klaberr.KindProbeUnavailable, "probe", "no processors found in cpuinfo")
	}
	return cores, nil
}
