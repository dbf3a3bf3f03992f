// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package plan

// OSOverheadMB estimates the memory the host platform keeps for
// itself before any cluster exists.  Platforms that run containers
// inside a virtual machine cost considerably more than native Linux.
func OSOverheadMB(osName string, arch string) int64 {
	var overhead int64
	switch osName {
	case "linux":
		overhead = 1024
	case "darwin":
		// The container runtime lives inside a VM.
		overhead = 2048
	case "windows":
		// WSL keeps its own VM resident.
		overhead = 3072
	default:
		overhead = 1536
	}

	// Hosts that emulate amd64 images on arm keep a translation
	// layer resident on top of the VM.
	if arch == "arm64" && osName != "linux" {
		overhead = overhead + 512
	}
	return overhead
}

// AvailableForClusterMB converts total physical memory into the pool
// the feasibility math budgets against.  It never goes negative.
func AvailableForClusterMB(totalRAMMB int64, osName string, arch string) int64 {
	available := totalRAMMB - OSOverheadMB(osName, arch)
	if available < 0 {
		return 0
	}
	return available
}
