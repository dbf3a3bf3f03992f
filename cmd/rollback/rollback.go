// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package rollback

import (
	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/oracle-cne/klab/pkg/commands/rollback"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const (
	CommandName = "rollback"
	helpShort   = "Roll back an interrupted installation"
	helpLong    = `Tear down every installation step that was started but never completed,
using the journal left behind by the failed run. Steps that completed are
left in place.`
	helpExample = `
klab rollback
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

// RunCmd runs the "klab rollback" command
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

	return rollback.Rollback(octx, &rollback.Options{})
}
