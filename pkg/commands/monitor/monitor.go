// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package monitor runs the resource monitor in the foreground and
// manages the handle that lets a later invocation stop it.
package monitor

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/monitor"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/registry"
)

// Options control the monitor commands.
type Options struct {
	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Seam for the handle location, replaced in tests.
var handlePath = monitor.HandlePath

// Run watches resource headroom until interrupted, logging an alert
// whenever memory or disk drops below its floor.  The process records
// itself in the monitor handle so `monitor stop` can find it from
// another terminal.
func Run(octx *orchestrator.Context, opts *Options) error {
	path, err := handlePath()
	if err != nil {
		return err
	}
	if pid, alive := monitor.HandleAlive(path); alive {
		return klaberr.New(klaberr.KindAlreadyExists, "monitor", "a monitor is already running as process %d", pid)
	}

	storagePath, err := watchedPath(opts)
	if err != nil {
		return err
	}

	mon := monitor.New(octx.Profiler, storagePath)
	mon.Start()
	defer mon.Stop()

	if err = monitor.WriteHandle(path); err != nil {
		return err
	}
	defer monitor.ClearHandle(path)

	log.Infof("Monitoring resource headroom every %s; interrupt to stop", constants.MonitorInterval)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case alert := <-mon.Alerts():
			log.Warn(alert.Message)
		case sig := <-signals:
			log.Debugf("Received %s, shutting the monitor down", sig)
			return nil
		}
	}
}

// Stop signals the recorded monitor process.  A monitor that is
// already gone is not an error.
func Stop() error {
	path, err := handlePath()
	if err != nil {
		return err
	}
	return monitor.StopDetached(path)
}

// watchedPath picks the storage directory whose disk headroom the
// monitor samples: the active profile's, or the tool's own directory
// when no profile exists yet.
func watchedPath(opts *Options) (string, error) {
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return "", err
		}
	}

	record, err := reg.Active()
	if err != nil {
		return "", err
	}
	if record != nil && record.Config.StoragePath != "" {
		return record.Config.StoragePath, nil
	}
	return file.EnsureKlabDir()
}
