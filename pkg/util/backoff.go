// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package util

import (
	"time"
)

type retryFunc func(interface{}) (interface{}, bool, error)

// ExponentialDelay returns the wait before the given retry attempt.
// Attempts are one-based, so the schedule is 1s, 2s, 4s, 8s and so on.
func ExponentialDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}

// LinearRetryImpl executes a functor every 'wait' until it either succeeds,
// fails in a way that should not be retried, or the timeout is reached.  The
// functor is called with the given argument each interval.  If the functor
// succeeds, the function returns false with no error.  If the functor fails
// in a way that should not be retried, the function returns true with an
// error.  If time runs out, it returns false as well as the last error from
// the functor.  Due to the fact that a functor call may be long, this
// function may take longer than the given timeout.
func LinearRetryImpl(ftor retryFunc, arg interface{}, wait time.Duration, timeout time.Duration) (interface{}, bool, error) {
	begin := time.Now()

	var err error
	var failFast bool
	var ret interface{}
	for {
		ret, failFast, err = ftor(arg)
		if failFast && err != nil {
			return ret, failFast, err
		}

		if err == nil {
			return ret, false, nil
		}

		if time.Since(begin) >= timeout {
			return ret, false, err
		}

		time.Sleep(wait)
	}
}

