// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package start

import (
	"github.com/oracle-cne/klab/cmd/constants"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/start"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const (
	CommandName = "start"
	helpShort   = "Start a lab cluster"
	helpLong    = `Start a stopped cluster and wait until its API server answers and every node
reports ready.`
	helpExample = `
klab start
klab start --cluster-name dev
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

	return cmd
}

// RunCmd runs the "klab start" command
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

	return start.Start(octx, &start.Options{Alias: clusterName})
}
