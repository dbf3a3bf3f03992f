// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package logutils renders long-running operations as animated status
// lines, falling back to plain logging when stdout is not a terminal.
package logutils

import (
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/util"
)

// Waiter defines a function to wait for and a message
// to display while waiting.
type Waiter struct {
	WaitFunction    func(interface{}) error
	Args            interface{}
	Message         string
	MessageFunction func(interface{}) string
	Error           error
	done            bool
	mutex           sync.RWMutex
}

// Info is a wrapper around log.Info()
func Info(s string) {
	log.Info(s)
}

// Debug is a wrapper around log.Debug()
func Debug(s string) {
	log.Debug(s)
}

// Error is a wrapper around log.Error
func Error(s string) {
	log.Error(s)
}

func getMsg(waiter *Waiter) string {
	if waiter.MessageFunction != nil {
		return waiter.MessageFunction(waiter.Args)
	}
	return waiter.Message
}

func waitWithStatus(waiter *Waiter) {
	err := waiter.WaitFunction(waiter.Args)

	waiter.mutex.Lock()
	waiter.done = true
	waiter.Error = err
	log.Debugf("Wait done")
	waiter.mutex.Unlock()
}

// shouldBackup determines if WaitFor
// should back up lines each loop
func shouldBackup() (bool, error) {
	return util.FileIsTTY(os.Stdout)
}

// backup moves the cursor up n lines
//
// ^[[&dA is the VT-100 escape code to move the
// cursor up %d lines.  In GO, ^[ is \x1b
func backup(n int) {
	fmt.Printf("\x1b[%dA", n)
}

var colorReset = "\x1b[0m"
var colorYellow = "\x1b[33m"
var colorGreen = "\x1b[32m"

var clearLine = "\x1b[K"

// printDone prints a message for completed jobs
// formatted based on if it was successful or not.
func printDone(logFn func(string), w *Waiter) {
	if w.Error != nil {
		log.Errorf("%s: %s%s", getMsg(w), w.Error, clearLine)
	} else {
		logFn(fmt.Sprintf("%s: %s%s%s%s", getMsg(w), colorGreen, "ok", colorReset, clearLine))
	}
}

var waitStrings []string = []string{
	colorYellow + "waiting",
	colorYellow + "waiting.",
	colorYellow + "waiting..",
	colorYellow + "waiting...",
	colorYellow + "waiting ..",
	colorYellow + "waiting  .",
}

func waitString(msg string, iter int) string {
	idx := iter % len(waitStrings)
	return fmt.Sprintf("%s: %s%s%s", msg, waitStrings[idx], colorReset, clearLine)
}

// WaitFor starts some goroutines and pretty-prints a
// message for each.  Returns true if an Error occurred
// for any of the waiters.
func WaitFor(logFn func(string), waiters []*Waiter) bool {
	haveError := false
	doBackup, err := shouldBackup()
	if log.GetLevel() < log.InfoLevel {
		// only backup if messages are being logged
		doBackup = false
	}

	if err != nil {
		log.Error(err)
		return true
	}

	// Kick off our waiters
	for _, w := range waiters {
		go waitWithStatus(w)
	}

	// Wait for everything, logging as they go
	loops := 0
	for len(waiters) > 0 {
		done := []*Waiter{}
		notDone := []*Waiter{}
		for _, w := range waiters {
			w.mutex.RLock()

			if w.done {
				done = append(done, w)
			} else {
				notDone = append(notDone, w)
			}

			if w.Error != nil {
				haveError = true
			}

			w.mutex.RUnlock()
		}
		for _, w := range done {
			printDone(logFn, w)
		}
		for _, w := range notDone {
			logFn(waitString(getMsg(w), loops))
		}
		loops = loops + 1

		waiters = notDone
		if len(waiters) == 0 {
			break
		} else if doBackup {
			backup(len(waiters))
		}
		time.Sleep(500 * time.Millisecond)
	}

	return haveError
}

