// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package klaberr defines the closed set of error kinds that the
// orchestrator core reasons about.  Recovery tables, exit codes, and
// user-facing diagnostics all dispatch on the Kind rather than on
// error strings.
package klaberr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a class of failure.  The set is closed; new failure
// modes are added here and given a remediation table entry, not
// special-cased at call sites.
type Kind int

const (
	KindUnknown Kind = iota
	KindProbeUnavailable
	KindRuntimeUnavailable
	KindRuntimeNotRunning
	KindPortInUse
	KindInsufficientMemory
	KindNetworkConflict
	KindConfigMissing
	KindConfigInvalid
	KindInstallationFailed
	KindTimeout
	KindPermissionDenied
	KindDependencyRepoFailed
	KindAlreadyExists
	KindNotFound
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindProbeUnavailable:     "probe-unavailable",
	KindRuntimeUnavailable:   "runtime-unavailable",
	KindRuntimeNotRunning:    "runtime-not-running",
	KindPortInUse:            "port-in-use",
	KindInsufficientMemory:   "insufficient-memory",
	KindNetworkConflict:      "network-conflict",
	KindConfigMissing:        "config-missing",
	KindConfigInvalid:        "config-invalid",
	KindInstallationFailed:   "installation-failed",
	KindTimeout:              "timeout",
	KindPermissionDenied:     "permission-denied",
	KindDependencyRepoFailed: "dependency-repo-failed",
	KindAlreadyExists:        "already-exists",
	KindNotFound:             "not-found",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "unknown"
	}
	return name
}

// Process exit classes.  The specific non-zero exit value of the tool
// corresponds to the numeric class of the failing error kind so that
// unattended callers can branch on the result.
const (
	ExitGeneral              = 1
	ExitDependencyMissing    = 2
	ExitResourceInsufficient = 3
	ExitNetworkConflict      = 4
	ExitTimeout              = 5
	ExitPermissionDenied     = 6
	ExitConfigInvalid        = 7
)

var exitClasses = map[Kind]int{
	KindUnknown:              ExitGeneral,
	KindProbeUnavailable:     ExitGeneral,
	KindInstallationFailed:   ExitGeneral,
	KindAlreadyExists:        ExitGeneral,
	KindNotFound:             ExitGeneral,
	KindRuntimeUnavailable:   ExitDependencyMissing,
	KindRuntimeNotRunning:    ExitDependencyMissing,
	KindDependencyRepoFailed: ExitDependencyMissing,
	KindInsufficientMemory:   ExitResourceInsufficient,
	KindPortInUse:            ExitNetworkConflict,
	KindNetworkConflict:      ExitNetworkConflict,
	KindTimeout:              ExitTimeout,
	KindPermissionDenied:     ExitPermissionDenied,
	KindConfigMissing:        ExitConfigInvalid,
	KindConfigInvalid:        ExitConfigInvalid,
}

// Error is the concrete error carried through the orchestrator.  It
// names its kind and the step that produced it, and accumulates the
// remediations that were attempted on its behalf so that a human can
// pick up where automatic recovery left off.
type Error struct {
	Kind      Kind
	Step      string
	Message   string
	Attempted []string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Step != "" {
		b.WriteString(e.Step)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	if e.Message != "" && e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err.Error())
	}
	fmt.Fprintf(&b, " (%s)", e.Kind)
	if len(e.Attempted) > 0 {
		fmt.Fprintf(&b, "; attempted: %s", strings.Join(e.Attempted, ", "))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind attributed to a step.
func New(kind Kind, step string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Step:    step,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind and step to an underlying error.  A nil err
// yields nil so call sites can wrap unconditionally.
func Wrap(kind Kind, step string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind: kind,
		Step: step,
		Err:  err,
	}
}

// WithAttempt records a remediation that was attempted for err.  If
// err is not already an *Error it is wrapped with KindUnknown first.
func WithAttempt(err error, attempt string) error {
	if err == nil {
		return nil
	}
	var ke *Error
	if !errors.As(err, &ke) {
		ke = &Error{Kind: KindUnknown, Err: err}
	}
	ke.Attempted = append(ke.Attempted, attempt)
	return ke
}

// KindOf extracts the kind from an error chain.  Errors that never
// passed through this package report KindUnknown.
func KindOf(err error) Kind {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit value for its class.
// A nil error maps to zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	class, ok := exitClasses[KindOf(err)]
	if !ok {
		return ExitGeneral
	}
	return class
}
