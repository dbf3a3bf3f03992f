// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// Phase is where a component is in its installation lifecycle.  A
// component with no record at all has not been started.
type Phase string

const (
	PhaseStarted   Phase = "Started"
	PhaseCompleted Phase = "Completed"
	PhaseFailed    Phase = "Failed"
)

// Event is one installation state transition.
type Event struct {
	Component string
	Phase     Phase
	Timestamp time.Time
}

// Journal is the persisted installation state.  Records are appended
// as component:phase:unixTimestamp lines and synced to disk before
// the transition's side effects run, so that a crash mid-step can be
// replayed on the next run.  For any component the most recent record
// is authoritative.
type Journal struct {
	path   string
	file   *os.File
	events []Event
	now    func() time.Time
}

// DefaultPath returns the location of the installation state file.
func DefaultPath() (string, error) {
	dir, err := file.EnsureKlabDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.InstallStateFilename), nil
}

// Open creates or resumes a journal at the given path.  An existing
// file is replayed so that an interrupted run's history is visible.
func Open(path string) (*Journal, error) {
	j := &Journal{
		path: path,
		now:  time.Now,
	}

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	} else if err != nil {
		return nil, err
	}

	events, err := parseJournal(string(contents))
	if err != nil {
		return nil, err
	}
	j.events = events
	return j, nil
}

// Record appends a state transition and syncs it to disk.  It must be
// called before the side effects of the transition begin.
func (j *Journal) Record(component string, phase Phase) error {
	if strings.Contains(component, ":") {
		return klaberr.New(klaberr.KindConfigInvalid, "state", "component name %q may not contain ':'", component)
	}

	if j.file == nil {
		f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		j.file = f
	}

	event := Event{
		Component: component,
		Phase:     phase,
		Timestamp: j.now(),
	}

	line := fmt.Sprintf("%s:%s:%d\n", event.Component, event.Phase, event.Timestamp.Unix())
	if _, err := j.file.WriteString(line); err != nil {
		return err
	}
	if err := j.file.Sync(); err != nil {
		return err
	}

	j.events = append(j.events, event)
	return nil
}

// Events returns the full history in order.
func (j *Journal) Events() []Event {
	events := make([]Event, len(j.events))
	copy(events, j.events)
	return events
}

// Latest returns the most recent phase recorded for a component.
func (j *Journal) Latest(component string) (Phase, bool) {
	for i := len(j.events) - 1; i >= 0; i-- {
		if j.events[i].Component == component {
			return j.events[i].Phase, true
		}
	}
	return "", false
}

// HasHistory reports whether any transitions have been recorded.  A
// journal with history at startup is the sign of an interrupted run.
func (j *Journal) HasHistory() bool {
	return len(j.events) > 0
}

// Incomplete returns the components whose most recent phase is not
// Completed, most recently started first.  These are the rollback
// candidates: a trailing Started means the step was interrupted, and
// a trailing Failed means the step may have left partial work behind.
func (j *Journal) Incomplete() []string {
	latest := map[string]Phase{}
	order := []string{}
	for _, event := range j.events {
		if _, seen := latest[event.Component]; !seen {
			order = append(order, event.Component)
		}
		latest[event.Component] = event.Phase
	}

	incomplete := []string{}
	for i := len(order) - 1; i >= 0; i-- {
		if latest[order[i]] != PhaseCompleted {
			incomplete = append(incomplete, order[i])
		}
	}
	return incomplete
}

// Clear removes the journal from disk.  Called only when a run has
// fully succeeded.
func (j *Journal) Clear() error {
	if err := j.Close(); err != nil {
		return err
	}
	j.events = nil

	err := os.Remove(j.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close releases the file handle.  The journal can keep recording
// afterwards; the handle is reopened on demand.
func (j *Journal) Close() error {
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// parseJournal parses component:phase:unixTimestamp lines.  Anything
// malformed means the state file cannot be trusted for replay.
func parseJournal(contents string) ([]Event, error) {
	events := []Event{}
	for i, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) != 3 {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "state", "state file line %d is not component:phase:timestamp", i+1)
		}

		phase := Phase(parts[1])
		switch phase {
		case PhaseStarted, PhaseCompleted, PhaseFailed:
		default:
			return nil, klaberr.New(klaberr.KindConfigInvalid, "state", "state file line %d has unknown phase %q", i+1, parts[1])
		}

		unix, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "state", "state file line %d has a malformed timestamp", i+1)
		}

		events = append(events, Event{
			Component: parts[0],
			Phase:     phase,
			Timestamp: time.Unix(unix, 0),
		})
	}
	return events, nil
}
