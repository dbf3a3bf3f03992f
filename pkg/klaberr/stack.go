// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package klaberr

import (
	"sync"
	"time"
)

// StackCapacity bounds the diagnostic history.  Once full, the oldest
// entries are evicted.
const StackCapacity = 32

// Entry is one recorded failure, kept for diagnostics.
type Entry struct {
	Message   string
	Kind      Kind
	Site      string
	Timestamp time.Time
}

// Stack is a bounded history of failures observed during a run.  It
// hangs off the orchestrator context rather than living in package
// state so tests can fabricate their own.  One stack is shared by the
// executor and the profiler, and the profiler's probes also run on the
// monitor goroutine, so access is serialized.
type Stack struct {
	mutex   sync.Mutex
	entries []Entry
}

// NewStack returns an empty diagnostic stack.
func NewStack() *Stack {
	return &Stack{}
}

// Record appends a failure to the stack, evicting the oldest entry
// once capacity is reached.
func (s *Stack) Record(kind Kind, site string, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries = append(s.entries, Entry{
		Message:   message,
		Kind:      kind,
		Site:      site,
		Timestamp: time.Now(),
	})
	if len(s.entries) > StackCapacity {
		s.entries = s.entries[len(s.entries)-StackCapacity:]
	}
}

// RecordError is a convenience over Record for error values.
func (s *Stack) RecordError(site string, err error) {
	if err == nil {
		return
	}
	s.Record(KindOf(err), site, err.Error())
}

// Last returns the most recent entry, if any.
func (s *Stack) Last() (Entry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// LastKind returns the kind of the most recent failure, or KindUnknown
// when nothing has been recorded.
func (s *Stack) LastKind() Kind {
	last, ok := s.Last()
	if !ok {
		return KindUnknown
	}
	return last.Kind
}

// Entries returns the recorded history, oldest first.
func (s *Stack) Entries() []Entry {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of recorded entries.
func (s *Stack) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.entries)
}
