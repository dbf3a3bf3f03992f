// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package orchestrator

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/state"
	"github.com/oracle-cne/klab/pkg/util"
)

// TeardownFunc undoes one component's partial installation.  Every
// teardown must be idempotent.  Rollback is best-effort and may be
// re-invoked manually after a partial failure, so a teardown will see
// resources that are already gone.
type TeardownFunc func() error

// Executor runs installation steps through the per-component state
// machine NotStarted -> Started -> Completed | Failed.  Transitions
// are journaled before any externally visible side effect so that a
// crash mid-step is recoverable by replaying the journal.
type Executor struct {
	journal   *state.Journal
	errs      *klaberr.Stack
	teardowns map[string]TeardownFunc

	// MaxAttempts caps how many times one step is attempted before
	// its failure becomes final.
	MaxAttempts int

	// Remedies maps an error kind to the corrective action attempted
	// before a retry.  New failure modes are handled by extending
	// this table, not by special-casing call sites.
	Remedies map[klaberr.Kind]Remedy

	sleep func(time.Duration)
}

// NewExecutor builds an executor over the context's journal, loaded
// with the standard recovery table.
func NewExecutor(octx *Context) *Executor {
	return &Executor{
		journal:     octx.Journal,
		errs:        octx.Errors,
		teardowns:   map[string]TeardownFunc{},
		MaxAttempts: constants.SmartRetryMaxAttempts,
		Remedies:    NewRemediator(octx).Table(),
		sleep:       time.Sleep,
	}
}

// RegisterTeardown associates a component with the action that undoes
// its installation.  Rollback only considers registered components;
// journal entries without a teardown are reported and skipped.
func (e *Executor) RegisterTeardown(component string, teardown TeardownFunc) {
	e.teardowns[component] = teardown
}

// RunStep drives one component through its state machine.  The
// Started transition is persisted before the action runs.  The action
// itself is retried through the recovery table, so one journaled step
// can absorb several attempts; only the final outcome is recorded.
func (e *Executor) RunStep(component string, action func() error) error {
	if err := e.journal.Record(component, state.PhaseStarted); err != nil {
		return err
	}

	if err := e.SmartRetry(component, action); err != nil {
		if recordErr := e.journal.Record(component, state.PhaseFailed); recordErr != nil {
			log.Errorf("Could not journal failure of %s: %v", component, recordErr)
		}
		return err
	}

	return e.journal.Record(component, state.PhaseCompleted)
}

// SmartRetry invokes action and, on failure, consults the recovery
// table for the error's kind.  A matching remediation is applied and
// the action retried after an exponential backoff; kinds without an
// entry are retried on the same schedule without remediation.  After
// MaxAttempts the last error is returned, annotated with every
// remediation that was attempted on its behalf.
func (e *Executor) SmartRetry(step string, action func() error) error {
	var err error
	var attempted []string

	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		err = action()
		if err == nil {
			return nil
		}

		e.errs.RecordError(step, err)
		if attempt == e.MaxAttempts {
			break
		}

		kind := klaberr.KindOf(err)
		if remedy, ok := e.Remedies[kind]; ok {
			log.Infof("Attempting to recover from a %s failure during %s", kind, step)
			if remedyErr := remedy.Apply(); remedyErr != nil {
				log.Debugf("Remediation for %s failed: %v", kind, remedyErr)
				attempted = append(attempted, remedy.Description+" (unsuccessfully)")
			} else {
				attempted = append(attempted, remedy.Description)
			}
		}

		delay := util.ExponentialDelay(attempt)
		log.Debugf("Retrying %s in %s, attempt %d of %d", step, delay, attempt+1, e.MaxAttempts)
		e.sleep(delay)
	}

	for _, a := range attempted {
		err = klaberr.WithAttempt(err, a)
	}
	return err
}

// Rollback tears down every component the journal shows as started
// but never completed, most recent first.  A teardown failure is
// recorded and logged but does not stop rollback of the remaining
// components.
func (e *Executor) Rollback() error {
	incomplete := e.journal.Incomplete()
	if len(incomplete) == 0 {
		log.Debug("Nothing to roll back")
		return nil
	}

	var failed []string
	for _, component := range incomplete {
		teardown, ok := e.teardowns[component]
		if !ok {
			log.Infof("No teardown is registered for %s, leaving it in place", component)
			continue
		}

		log.Infof("Rolling back %s", component)
		if err := teardown(); err != nil {
			log.Errorf("Could not roll back %s: %v", component, err)
			e.errs.RecordError("rollback "+component, err)
			failed = append(failed, component)
		}
	}

	if len(failed) > 0 {
		return klaberr.New(klaberr.KindInstallationFailed, "rollback", "teardown failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
