// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package cluster

import (
	"github.com/oracle-cne/klab/cmd/cluster/backup"
	"github.com/oracle-cne/klab/cmd/cluster/create"
	"github.com/oracle-cne/klab/cmd/cluster/list"
	switchcmd "github.com/oracle-cne/klab/cmd/cluster/switch"
	"github.com/oracle-cne/klab/cmd/common"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/spf13/cobra"
)

const (
	CommandName = "cluster"
	helpShort   = "Manage cluster profiles"
	helpLong    = `Manage the cluster profiles kept in the klab registry: create new profiles,
switch the active one, archive their storage, and list them.`
	helpExample = `
klab cluster <subcommand>
`
)

func NewCmd() *cobra.Command {
	cmd := cmdutil.NewCommand(CommandName, helpShort, helpLong)
	cmd.Args = common.ArgsCheck
	cmd.ValidArgs = []string{create.CommandName, switchcmd.CommandName, backup.CommandName, list.CommandName}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return RunCmd(cmd)
	}
	cmd.Example = helpExample
	cmdutil.SilenceUsage(cmd)

	cmd.AddCommand(create.NewCmd())
	cmd.AddCommand(switchcmd.NewCmd())
	cmd.AddCommand(backup.NewCmd())
	cmd.AddCommand(list.NewCmd())

	return cmd
}

// RunCmd runs the "klab cluster" command
func RunCmd(cmd *cobra.Command) error {
	return nil
}
