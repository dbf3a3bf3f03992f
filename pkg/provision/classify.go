// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package provision

import (
	"strings"

	"github.com/oracle-cne/klab/pkg/klaberr"
)

// classifyPatterns maps substrings of backend output onto error
// kinds.  Order matters: specific patterns come before the generic
// ones they would otherwise be shadowed by.
var classifyPatterns = []struct {
	substr string
	kind   klaberr.Kind
}{
	{"address already in use", klaberr.KindPortInUse},
	{"port is already allocated", klaberr.KindPortInUse},
	{"network with name", klaberr.KindNetworkConflict},
	{"could not find an available, non-overlapping", klaberr.KindNetworkConflict},
	{"cannot connect to the docker daemon", klaberr.KindRuntimeNotRunning},
	{"is the docker daemon running", klaberr.KindRuntimeNotRunning},
	{"podman machine is not running", klaberr.KindRuntimeNotRunning},
	{"cannot allocate memory", klaberr.KindInsufficientMemory},
	{"out of memory", klaberr.KindInsufficientMemory},
	{"no space left on device", klaberr.KindInsufficientMemory},
	{"permission denied", klaberr.KindPermissionDenied},
	{"operation not permitted", klaberr.KindPermissionDenied},
	{"executable file not found", klaberr.KindRuntimeUnavailable},
	{"command not found", klaberr.KindRuntimeUnavailable},
	{"context deadline exceeded", klaberr.KindTimeout},
	{"timed out", klaberr.KindTimeout},
	{"already exists", klaberr.KindAlreadyExists},
}

// ClassifyOutput maps the stderr of a failed backend command onto an
// error kind.  Unrecognized failures are plain installation failures.
func ClassifyOutput(stderr string) klaberr.Kind {
	lower := strings.ToLower(stderr)
	for _, pattern := range classifyPatterns {
		if strings.Contains(lower, pattern.substr) {
			return pattern.kind
		}
	}
	return klaberr.KindInstallationFailed
}

// WrapCommandError builds a typed error out of a failed backend
// command, folding the classified kind and the command's own words
// into it.
func WrapCommandError(step string, stderr string, err error) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = err.Error()
	}
	return klaberr.New(ClassifyOutput(stderr), step, "%s", detail)
}
