// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package install

import (
	"strings"

	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/install"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const (
	CommandName = "install"
	helpShort   = "Install a lab cluster"
	helpLong    = `Install a Kubernetes lab cluster sized to the host. The host is profiled, the
requested components are checked against the memory that is actually free, and
the installation retries transient failures and rolls itself back when a step
cannot be completed.`
	helpExample = `
klab install
klab install --components registry,ingress --non-interactive
klab install --dry-run
`
)

var config types.Config
var options install.Options
var components string

const (
	flagComponents      = "components"
	flagComponentsShort = "c"
	flagComponentsHelp  = "A comma separated list of catalog components to install. The default set for the host's resource tier is used when this is not set"

	flagDryRun     = "dry-run"
	flagDryRunHelp = "Show the installation plan without changing the host"

	flagNonInteractive     = "non-interactive"
	flagNonInteractiveHelp = "Run without confirmation prompts. Setting KLAB_NON_INTERACTIVE=true behaves the same way"

	flagLowMemory     = "low-memory"
	flagLowMemoryHelp = "Keep only the components that fit into available memory instead of failing. Setting KLAB_LOW_MEMORY=true behaves the same way"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   CommandName,
		Short: helpShort,
		Long:  helpLong,
		Args:  cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return RunCmd(cmd)
	}
	cmd.Example = helpExample
	cmdutil.SilenceUsage(cmd)

	cmd.Flags().StringVarP(&components, flagComponents, flagComponentsShort, "", flagComponentsHelp)
	cmd.Flags().BoolVarP(&options.DryRun, flagDryRun, "", false, flagDryRunHelp)
	cmd.Flags().BoolVarP(&config.NonInteractive, flagNonInteractive, "", false, flagNonInteractiveHelp)
	cmd.Flags().BoolVarP(&config.LowMemory, flagLowMemory, "", false, flagLowMemoryHelp)

	return cmd
}

// RunCmd runs the "klab install" command
func RunCmd(cmd *cobra.Command) error {
	cfg, _, err := cmdutil.ResolveConfig(&config)
	if err != nil {
		return err
	}

	octx, err := orchestrator.NewContext(cfg, nil)
	if err != nil {
		return err
	}
	defer octx.Close()

	if components != "" {
		options.Components = strings.Split(components, ",")
	}
	return install.Install(octx, &options)
}
