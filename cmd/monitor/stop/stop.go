// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package stop

import (
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/monitor"
	"github.com/spf13/cobra"
)

const (
	CommandName = "stop"
	helpShort   = "Stop the resource monitor"
	helpLong    = `Signal the running resource monitor to shut down. Nothing happens when no
monitor is running.`
	helpExample = `
klab monitor stop
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

// RunCmd runs the "klab monitor stop" command
func RunCmd(cmd *cobra.Command) error {
	return monitor.Stop()
}
