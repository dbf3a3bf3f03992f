// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package info

import (
	"fmt"

	"github.com/oracle-cne/klab/pkg/cmdutil"
	"github.com/spf13/cobra"
)

const (
	CommandName = "info"
	helpShort   = "Display information about klab"
	helpLong    = `Display information about klab that may be difficult to find.`
	helpExample = `
klab info
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
	cmdutil.SilenceUsage(cmd)
	cmd.Example = helpExample

	return cmd
}

// RunCmd runs the "klab info" command
func RunCmd(cmd *cobra.Command) error {
	fmt.Println("The KLAB_CONFIG environment variable sets the location of the klab configuration file.")
	fmt.Println("The KLAB_NON_INTERACTIVE environment variable skips every confirmation prompt. This behaves the same way as the --non-interactive option of klab install.")
	fmt.Println("The KLAB_LOW_MEMORY environment variable trims installations down to the components that fit into available memory. This behaves the same way as the --low-memory option of klab install.")
	fmt.Println("The KUBECONFIG environment variable sets the kubeconfig that kubectl reads. Point it at the path printed by klab install, or at the stable link maintained by klab cluster switch.")
	return nil
}
