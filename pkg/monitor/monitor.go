// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package monitor watches resource headroom while clusters run.  A
// supervised loop samples free memory and storage on a fixed interval
// and delivers threshold alerts over a buffered channel.  Sends never
// block; when nobody is draining, alerts are dropped rather than
// stalling the sampler or the main loop.
package monitor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/system"
)

const alertBuffer = 16

// AlertKind names the threshold that was crossed.
type AlertKind string

const (
	AlertLowMemory AlertKind = "low-memory"
	AlertLowDisk   AlertKind = "low-disk"
)

// Alert is one threshold crossing.
type Alert struct {
	Kind        AlertKind
	Message     string
	ValueMB     int64
	ThresholdMB int64
	Timestamp   time.Time
}

// Monitor samples resource headroom on an interval.
type Monitor struct {
	interval        time.Duration
	memThresholdMB  int64
	diskThresholdMB int64
	storagePath     string

	alerts chan Alert
	stop   chan struct{}
	done   chan struct{}

	sampleMemory func() (int64, error)
	sampleDisk   func(path string) (int64, error)
	now          func() time.Time
}

// New builds a monitor over the profiler's memory probe and the given
// storage path, using the default interval and thresholds.
func New(profiler *system.Profiler, storagePath string) *Monitor {
	return &Monitor{
		interval:        constants.MonitorInterval,
		memThresholdMB:  constants.MonitorMemoryThresholdMB,
		diskThresholdMB: constants.MonitorDiskThresholdMB,
		storagePath:     storagePath,
		alerts:          make(chan Alert, alertBuffer),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		sampleMemory:    profiler.AvailableRAMMB,
		sampleDisk:      FreeDiskMB,
		now:             time.Now,
	}
}

// Alerts is the channel threshold crossings are delivered on.
func (m *Monitor) Alerts() <-chan Alert {
	return m.alerts
}

// Start launches the sampling loop.
func (m *Monitor) Start() {
	go m.run()
}

// Stop ends the sampling loop and waits for it to wind down.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Drain returns every alert currently pending without blocking.
func (m *Monitor) Drain() []Alert {
	var pending []Alert
	for {
		select {
		case alert := <-m.alerts:
			pending = append(pending, alert)
		default:
			return pending
		}
	}
}

func (m *Monitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample takes one reading of each resource and raises alerts for
// crossed thresholds.
func (m *Monitor) sample() {
	if freeMB, err := m.sampleMemory(); err != nil {
		log.Debugf("Could not sample free memory: %v", err)
	} else if freeMB < m.memThresholdMB {
		m.send(Alert{
			Kind:        AlertLowMemory,
			Message:     "free memory is below the safe threshold",
			ValueMB:     freeMB,
			ThresholdMB: m.memThresholdMB,
			Timestamp:   m.now(),
		})
	}

	if m.storagePath == "" {
		return
	}
	if freeMB, err := m.sampleDisk(m.storagePath); err != nil {
		log.Debugf("Could not sample free disk at %s: %v", m.storagePath, err)
	} else if freeMB < m.diskThresholdMB {
		m.send(Alert{
			Kind:        AlertLowDisk,
			Message:     "cluster storage is running out of space",
			ValueMB:     freeMB,
			ThresholdMB: m.diskThresholdMB,
			Timestamp:   m.now(),
		})
	}
}

func (m *Monitor) send(alert Alert) {
	select {
	case m.alerts <- alert:
	default:
		log.Debugf("Dropping %s alert, nobody is listening", alert.Kind)
	}
}
