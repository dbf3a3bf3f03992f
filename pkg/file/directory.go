// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oracle-cne/klab/pkg/constants"
)

// GetKlabDir gets the absolute path of ~/.klab dir
func GetKlabDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, constants.UserConfigDir), nil
}

// EnsureKlabDir ensures that ~/.klab dir exists
func EnsureKlabDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, constants.UserConfigDir)
	err = os.MkdirAll(dir, 0700)
	if err != nil && !os.IsExist(err) {
		return "", err
	}

	return dir, err
}

// EnsureClustersDir ensures that the clusters dir under the given klab
// dir exists
func EnsureClustersDir(klabDir string) (string, error) {
	dir := filepath.Join(klabDir, constants.UserClustersDir)
	err := os.MkdirAll(dir, 0700)
	if err != nil && !os.IsExist(err) {
		return "", err
	}

	return dir, nil
}

// EnsureBackupsDir ensures that the backups dir under the given klab
// dir exists
func EnsureBackupsDir(klabDir string) (string, error) {
	dir := filepath.Join(klabDir, constants.UserBackupsDir)
	err := os.MkdirAll(dir, 0700)
	if err != nil && !os.IsExist(err) {
		return "", err
	}

	return dir, nil
}

// AbsDir returns the absolute director of the string, expanding ~/ prefix if needed.
func AbsDir(dir string) (string, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
	}

	return filepath.Abs(dir)
}
