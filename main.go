// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package main

import (
	"os"

	"github.com/oracle-cne/klab/cmd/root"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/provision/external"
	"github.com/oracle-cne/klab/pkg/provision/none"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func registerBackends() {
	provision.RegisterBackend(external.BackendName, external.CreateBackend)
	provision.RegisterBackend(none.BackendName, none.CreateBackend)
}

func main() {
	// Allow timestamps for logging
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	// Allow prefix matching to minimize typing
	cobra.EnablePrefixMatching = true

	// Register the provisioning backends
	registerBackends()

	flags := pflag.NewFlagSet("klab", pflag.ExitOnError)
	pflag.CommandLine = flags

	rootCmd := root.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(klaberr.ExitCode(err))
	}
}
