// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package status

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/status"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/util"
	"github.com/spf13/cobra"
)

const (
	CommandName = "status"
	helpShort   = "Show the host and cluster status"
	helpLong    = `Show what the host can spare, which cluster profiles exist, and whether an
interrupted installation is waiting to be rolled back. Status never refuses to
run; probes that fail are reported with fallback figures.`
	helpExample = `
klab status
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

// RunCmd runs the "klab status" command
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

	report, err := status.Status(octx, &status.Options{})
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *status.Report) {
	fmt.Printf("Host: %s/%s with %d CPUs and %s of memory (%s tier)\n",
		report.Facts.OS, report.Facts.Arch, report.Facts.CPUCores,
		util.HumanReadableMB(uint64(report.Facts.TotalRAMMB)), report.Tier)
	fmt.Printf("Container runtime: %s\n", report.Facts.RuntimeFlavor)
	fmt.Printf("Memory available for clusters: %s\n", util.HumanReadableMB(uint64(report.AvailableMB)))
	if report.MonitorAlive {
		fmt.Printf("Resource monitor: running as process %d\n", report.MonitorPID)
	} else {
		fmt.Println("Resource monitor: not running")
	}
	if len(report.Incomplete) > 0 {
		fmt.Printf("Unfinished installation steps: %s. Run \"klab rollback\" to clean them up.\n", strings.Join(report.Incomplete, ", "))
	}
	fmt.Println("")

	if len(report.Records) == 0 {
		fmt.Println("No cluster profiles exist. Run \"klab install\" to create one.")
		return
	}

	table := uitable.New()
	table.AddRow("ALIAS", "NAME", "STATUS", "MEMORY", "NODES", "ACTIVE")
	for _, record := range report.Records {
		active := ""
		if record.Alias == report.ActiveAlias {
			active = "*"
		}
		table.AddRow(record.Alias, record.Config.Name, string(record.Status), record.Config.MemorySpec, record.Config.Nodes, active)
	}
	fmt.Println(table)
}
