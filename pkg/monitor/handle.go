// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package monitor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
)

// The detached monitor is identified by a persisted handle so that a
// later invocation of the tool can find and stop it.

// HandlePath returns the location of the monitor handle.
func HandlePath() (string, error) {
	dir, err := file.EnsureKlabDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.MonitorHandleFilename), nil
}

// WriteHandle persists this process as the running monitor.
func WriteHandle(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

// ReadHandle returns the recorded monitor pid.  A missing handle
// returns os.ErrNotExist.
func ReadHandle(path string) (int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(contents)))
}

// ClearHandle removes the handle.  A missing handle is fine.
func ClearHandle(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// HandleAlive reports the recorded pid and whether that process still
// exists.
func HandleAlive(path string) (int, bool) {
	pid, err := ReadHandle(path)
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}

// StopDetached signals the recorded monitor process and removes the
// handle.  A missing handle, or a handle whose process is already
// gone, is a no-op rather than an error.
func StopDetached(path string) error {
	pid, err := ReadHandle(path)
	if os.IsNotExist(err) {
		log.Debug("No monitor handle exists, nothing to stop")
		return nil
	}
	if err != nil {
		// An unreadable handle is stale by definition.
		log.Debugf("Discarding unreadable monitor handle: %v", err)
		return ClearHandle(path)
	}

	if !processAlive(pid) {
		log.Debugf("Monitor process %d is already gone", pid)
		return ClearHandle(path)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err = proc.Signal(syscall.SIGTERM); err != nil {
		// Lost the race with the process exiting.
		log.Debugf("Could not signal monitor process %d: %v", pid, err)
	}
	return ClearHandle(path)
}

// processAlive probes a pid with the null signal.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
