// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package unix

import (
	"context"
	"os/exec"
)

// RunCommand runs a command and captures its output streams.
func RunCommand(cmdName string, args ...string) (string, string, error) {
	e := NewCmdExecutor(cmdName, args...)
	err := e.Cmd.Run()
	return e.StdOutBuf.String(), e.StdErrBuf.String(), err
}

// RunCommandContext runs a command bound to the given context and
// captures its output streams.
func RunCommandContext(ctx context.Context, cmdName string, args ...string) (string, string, error) {
	e := NewCmdExecutorContext(ctx, cmdName, args...)
	err := e.Cmd.Run()
	return e.StdOutBuf.String(), e.StdErrBuf.String(), err
}

// CommandExists reports whether an executable with the given name can
// be found on the PATH.
func CommandExists(cmdName string) bool {
	_, err := exec.LookPath(cmdName)
	return err == nil
}
