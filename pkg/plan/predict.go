// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package plan

import (
	"github.com/oracle-cne/klab/pkg/catalog"
	"github.com/oracle-cne/klab/pkg/constants"
)

// Predictor answers whether a set of components fits on this host
// before anything is installed.  All figures are MB.
type Predictor struct {
	catalog *catalog.Catalog
}

// NewPredictor creates a predictor over the given component catalog.
func NewPredictor(cat *catalog.Catalog) *Predictor {
	return &Predictor{catalog: cat}
}

// PredictMemoryMB estimates the memory a cluster running the given
// components will consume: the base cluster overhead plus the sum of
// the component requirements.
func PredictMemoryMB(components []catalog.ComponentProfile) int64 {
	total := constants.BaseClusterOverheadMB
	for _, component := range components {
		total = total + component.MinMemoryMB
	}
	return total
}

// Threshold returns the memory budget the prediction is held to.  A
// fixed safety factor keeps the cluster from consuming every last MB
// of the pool.
func Threshold(availableMB int64) int64 {
	if availableMB <= 0 {
		return 0
	}
	return int64(float64(availableMB) * constants.MemorySafetyFactor)
}

// IsFeasible reports whether the given components fit within the
// available memory.  An empty component set is always feasible; the
// bare cluster is never blocked up front and instead fails at install
// time if the host truly cannot hold it.
func IsFeasible(components []catalog.ComponentProfile, availableMB int64) bool {
	if len(components) == 0 {
		return true
	}
	return PredictMemoryMB(components) <= Threshold(availableMB)
}

// FeasibleSubset walks the whole catalog in priority order and keeps
// every component that fits under the threshold, stopping at the
// first component that would cross it.  There is no backtracking: a
// large component blocks smaller ones behind it on purpose, because
// priority order is a promise about what gets installed first.
func (p *Predictor) FeasibleSubset(availableMB int64, lowMemory bool) []catalog.ComponentProfile {
	return FeasibleSubsetOf(p.catalog.Components(), availableMB, lowMemory)
}

// FeasibleSubsetOf is FeasibleSubset over an explicit request list.
// The list is assumed to be in priority order.  Zero or negative
// available memory yields an empty subset.
func FeasibleSubsetOf(requested []catalog.ComponentProfile, availableMB int64, lowMemory bool) []catalog.ComponentProfile {
	threshold := Threshold(availableMB)
	if threshold <= 0 {
		return []catalog.ComponentProfile{}
	}

	subset := []catalog.ComponentProfile{}
	running := constants.BaseClusterOverheadMB
	for _, component := range requested {
		if running+component.MinMemoryMB > threshold {
			break
		}
		running = running + component.MinMemoryMB
		subset = append(subset, component)

		if lowMemory {
			// Minimal mode keeps only the most important
			// component.
			break
		}
	}
	return subset
}
