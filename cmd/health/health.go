// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package health

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/health"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const (
	CommandName = "health"
	helpShort   = "Check the health of the environment"
	helpLong    = `Check that the container runtime is up, that the active cluster answers on
its API server, that no competing local cluster manager is running, and that
enough memory is left. The exit code reflects the first failing check.`
	helpExample = `
klab health
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

// RunCmd runs the "klab health" command
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

	checks, err := health.Health(octx, &health.Options{})
	if err != nil {
		return err
	}

	table := uitable.New()
	table.AddRow("CHECK", "STATUS", "DETAIL")
	for _, check := range checks {
		state := "ok"
		detail := check.Detail
		if check.Err != nil {
			state = "failed"
			detail = check.Err.Error()
		}
		table.AddRow(check.Name, state, detail)
	}
	fmt.Println(table)

	return health.FirstFailure(checks)
}
