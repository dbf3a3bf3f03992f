// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package unix

import (
	"bytes"
	"context"
	"os/exec"
)

type CmdExecutor struct {
	*exec.Cmd
	StdOutBuf bytes.Buffer
	StdErrBuf bytes.Buffer
}

// NewCmdExecutor creates a new CmdExecutor
func NewCmdExecutor(cmdName string, args ...string) *CmdExecutor {
	e := CmdExecutor{
		Cmd:       exec.Command(cmdName, args...),
		StdOutBuf: bytes.Buffer{},
		StdErrBuf: bytes.Buffer{},
	}
	e.Cmd.Stdout = &e.StdOutBuf
	e.Cmd.Stderr = &e.StdErrBuf
	return &e
}

// NewCmdExecutorContext creates a new CmdExecutor bound to a context.
// The process is killed when the context is cancelled or times out.
func NewCmdExecutorContext(ctx context.Context, cmdName string, args ...string) *CmdExecutor {
	e := CmdExecutor{
		Cmd:       exec.CommandContext(ctx, cmdName, args...),
		StdOutBuf: bytes.Buffer{},
		StdErrBuf: bytes.Buffer{},
	}
	e.Cmd.Stdout = &e.StdOutBuf
	e.Cmd.Stderr = &e.StdErrBuf
	return &e
}
