// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package cmdutil

import (
	"github.com/oracle-cne/klab/pkg/config"
	"github.com/oracle-cne/klab/pkg/config/types"
)

// ResolveConfig loads the persisted tool configuration and folds the
// options gathered from the command line into it.  Flag settings win
// over the file; the environment was already applied by the loader.
// The boolean reports whether this is the first run, before any
// configuration file exists.
func ResolveConfig(overrides *types.Config) (*types.Config, bool, error) {
	cfg, firstRun, err := config.Load()
	if err != nil {
		return nil, false, err
	}

	merged := types.MergeConfig(cfg, overrides)
	return &merged, firstRun, nil
}
