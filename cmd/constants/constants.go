// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package constants

const (
	FlagClusterName      = "cluster-name"
	FlagClusterNameShort = "C"
	FlagClusterNameHelp  = "The alias of the cluster profile to operate on. The active profile is used when this is not set"

	FlagMemory      = "memory"
	FlagMemoryShort = "m"
	FlagMemoryHelp  = "The amount of memory to reserve for the cluster, for example 4Gi or 2048Mi"
)
