// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package plan

import (
	"github.com/oracle-cne/klab/pkg/constants"
)

// Tier buckets hosts by how much hardware they bring.  It is derived
// once per run from total RAM and drives every downstream sizing
// decision.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// Sizing is the set of cluster defaults a tier implies.
type Sizing struct {
	Tier              Tier
	Nodes             int
	NamespaceQuota    int
	EvictionSoftMB    int64
	DefaultComponents int
}

// DeriveTier buckets a host by its total memory.  Hosts up to and
// including 16GiB are medium; only hosts above that are high.
func DeriveTier(totalRAMMB int64) Tier {
	switch {
	case totalRAMMB > constants.TierHighMinMB:
		return TierHigh
	case totalRAMMB >= constants.TierMediumMinMB:
		return TierMedium
	}
	return TierLow
}

// SizingFor maps a tier onto concrete cluster defaults.
func SizingFor(tier Tier) Sizing {
	switch tier {
	case TierHigh:
		return Sizing{Tier: tier, Nodes: 3, NamespaceQuota: 16, EvictionSoftMB: 1024, DefaultComponents: 6}
	case TierMedium:
		return Sizing{Tier: tier, Nodes: 2, NamespaceQuota: 8, EvictionSoftMB: 512, DefaultComponents: 4}
	}
	return Sizing{Tier: TierLow, Nodes: 1, NamespaceQuota: 4, EvictionSoftMB: 256, DefaultComponents: 2}
}
