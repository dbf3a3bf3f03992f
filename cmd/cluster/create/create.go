// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package create

import (
	"github.com/oracle-cne/klab/cmd/constants"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/cluster"
	"github.com/spf13/cobra"
)

const (
	CommandName = "create"
	helpShort   = "Create a cluster profile"
	helpLong    = `Create a named cluster profile with its own storage directory and port
allocations. The profile starts out stopped; klab install or klab start
brings it up.`
	helpExample = `
klab cluster create --cluster-name dev --memory 4Gi
`
)

var clusterName string
var memory string

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
	cmd.Flags().StringVarP(&memory, constants.FlagMemory, constants.FlagMemoryShort, "", constants.FlagMemoryHelp)

	return cmd
}

// RunCmd runs the "klab cluster create" command
func RunCmd(cmd *cobra.Command) error {
	_, err := cluster.Create(&cluster.Options{Alias: clusterName, MemorySpec: memory})
	return err
}
