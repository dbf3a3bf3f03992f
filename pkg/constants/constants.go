// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package constants

import "time"

const (
	UserConfigDir                     = ".klab"
	UserConfigFile                    = "config"
	UserConfigEnvironmentVariable     = "KLAB_CONFIG"
	NonInteractiveEnvironmentVariable = "KLAB_NON_INTERACTIVE"
	LowMemoryEnvironmentVariable      = "KLAB_LOW_MEMORY"
	UserClustersDir                   = "clusters"
	UserBackupsDir                    = "backups"
	ClusterRegistryFilename           = "clusters.yaml"
	InstallStateFilename              = "install.state"
	KubeconfigFilename                = "kubeconfig"
	MonitorHandleFilename             = "monitor.pid"

	// Cluster defaults
	DefaultClusterName  = "klab"
	DefaultClusterAlias = "default"
	DefaultBackend      = "external"
	DefaultMemorySpec   = "4Gi"

	// Port allocation.  Each cluster profile gets its own API server
	// and registry port so side-by-side profiles never collide.
	KubeAPIServerBasePort = uint16(6443)
	RegistryBasePort      = uint16(5000)
	PortScanLimit         = 64

	// Feasibility model
	BaseClusterOverheadMB = int64(512)
	MemorySafetyFactor    = 0.8

	// Fallback figures used when a probe cannot answer.  Detection
	// must never hard-fail the tool.
	FallbackTotalRAMMB = int64(4096)
	FallbackCPUCores   = 2

	// Resource tier boundaries, in MB of total RAM.
	TierMediumMinMB = int64(8 * 1024)
	TierHighMinMB   = int64(16 * 1024)

	// Probe TTL classes.  System facts change rarely, liveness
	// changes often, usage readings constantly.
	ProbeTTLFacts    = time.Hour
	ProbeTTLLiveness = 30 * time.Second
	ProbeTTLUsage    = 5 * time.Second

	// Bounded polling used when waiting on external operations.
	ReadinessTimeout  = 5 * time.Minute
	ReadinessInterval = 2 * time.Second
	ProbeDialTimeout  = 2 * time.Second

	// Health checks make one bounded request each rather than
	// polling; a health report must come back quickly even when the
	// cluster is wedged.
	HealthProbeTimeout = 10 * time.Second

	// Retry policy for recoverable installation steps.
	SmartRetryMaxAttempts = 3

	// Background monitor defaults.
	MonitorInterval          = 10 * time.Second
	MonitorMemoryThresholdMB = int64(512)
	MonitorDiskThresholdMB   = int64(1024)

	// Runtime flavors
	RuntimeFlavorPodman  = "podman"
	RuntimeFlavorDocker  = "docker"
	RuntimeFlavorUnknown = "unknown"

	// Backend types
	BackendTypeExternal = "external"
	BackendTypeNone     = "none"

	// Supported Kubernetes releases for provisioned clusters.
	KubeVersion           = "1.30"
	KubeVersionConstraint = ">= 1.26, < 1.32"
)
