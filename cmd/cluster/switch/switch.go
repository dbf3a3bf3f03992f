// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package switchcmd

import (
	"github.com/oracle-cne/klab/cmd/constants"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/cluster"
	"github.com/spf13/cobra"
)

const (
	CommandName = "switch"
	helpShort   = "Switch the active cluster profile"
	helpLong    = `Make a named cluster profile the active one and point the stable kubeconfig
link at it. When the profile has no usable kubeconfig yet, the switch still
happens and the link is left alone.`
	helpExample = `
klab cluster switch --cluster-name dev
`
)

var clusterName string

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

	cmd.Flags().StringVarP(&clusterName, constants.FlagClusterName, constants.FlagClusterNameShort, "", constants.FlagClusterNameHelp)
	cmd.MarkFlagRequired(constants.FlagClusterName)

	return cmd
}

// RunCmd runs the "klab cluster switch" command
func RunCmd(cmd *cobra.Command) error {
	return cluster.Switch(&cluster.Options{Alias: clusterName})
}
