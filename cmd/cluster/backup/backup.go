// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package backup

import (
	"github.com/oracle-cne/klab/cmd/constants"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/cluster"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	CommandName = "backup"
	helpShort   = "Back up a cluster profile"
	helpLong    = `Archive the storage directory of a cluster profile into the klab backups
directory. The archive is named by alias and timestamp.`
	helpExample = `
klab cluster backup
klab cluster backup --cluster-name dev
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

// RunCmd runs the "klab cluster backup" command
func RunCmd(cmd *cobra.Command) error {
	path, err := cluster.Backup(&cluster.Options{Alias: clusterName})
	if err != nil {
		return err
	}
	log.Infof("Backup written to %s", path)
	return nil
}
