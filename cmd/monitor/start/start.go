// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package start

import (
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/monitor"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const (
	CommandName = "start"
	helpShort   = "Start the resource monitor"
	helpLong    = `Watch memory and disk headroom in the foreground, logging an alert whenever
a threshold is crossed. Interrupt the process, or run klab monitor stop from
another terminal, to stop it.`
	helpExample = `
klab monitor start
`
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

	return cmd
}

// RunCmd runs the "klab monitor start" command
func RunCmd(cmd *cobra.Command) error {
	cfg, _, err := cmdutil.ResolveConfig(&types.Config{})
	if err != nil {
		return err
	}

	octx, err := orchestrator.NewContext(cfg, nil)
	if err != nil {
		return err
	}
	defer octx.Close()

	return monitor.Run(octx, &monitor.Options{})
}
