// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package monitor

import (
	"github.com/oracle-cne/klab/cmd/common"
	"github.com/oracle-cne/klab/cmd/monitor/start"
	"github.com/oracle-cne/klab/cmd/monitor/stop"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/spf13/cobra"
)

const (
	CommandName = "monitor"
	helpShort   = "Manage the resource monitor"
	helpLong    = `Manage the monitor that watches memory and disk headroom while a cluster is
in use.`
	helpExample = `
klab monitor <subcommand>
`
)

func NewCmd() *cobra.Command {
	cmd := cmdutil.NewCommand(CommandName, helpShort, helpLong)
	cmd.Args = common.ArgsCheck
	cmd.ValidArgs = []string{start.CommandName, stop.CommandName}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return RunCmd(cmd)
	}
	cmd.Example = helpExample
	cmdutil.SilenceUsage(cmd)

	cmd.AddCommand(start.NewCmd())
	cmd.AddCommand(stop.NewCmd())

	return cmd
}

// RunCmd runs the "klab monitor" command
func RunCmd(cmd *cobra.Command) error {
	return nil
}
