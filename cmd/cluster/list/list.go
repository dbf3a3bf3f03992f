// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package list

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/cluster"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	CommandName = "list"
	helpShort   = "List cluster profiles"
	helpLong    = `List every cluster profile in the registry in a stable order, marking the
active one.`
	helpExample = `
klab cluster list
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

// RunCmd runs the "klab cluster list" command
func RunCmd(cmd *cobra.Command) error {
	records, activeAlias, err := cluster.List(&cluster.Options{})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.Info("No cluster profiles exist")
		return nil
	}

	table := uitable.New()
	table.AddRow("ALIAS", "NAME", "STATUS", "MEMORY", "NODES", "CREATED", "ACTIVE")
	for _, record := range records {
		active := ""
		if record.Alias == activeAlias {
			active = "*"
		}
		table.AddRow(record.Alias, record.Config.Name, string(record.Status), record.Config.MemorySpec, record.Config.Nodes, record.CreatedAt.Format("2006-01-02 15:04:05"), active)
	}
	fmt.Println(table)
	return nil
}
