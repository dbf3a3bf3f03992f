// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
	"github.com/oracle-cne/klab/pkg/klaberr"
)

// Keys in the user configuration file.
const (
	KeyStoragePath   = "storagePath"
	KeyClusterName   = "clusterName"
	KeyRegistryPort  = "registryPort"
	KeyMemoryLimit   = "memoryLimit"
	KeyOS            = "osName"
	KeyArch          = "osArch"
	KeyTotalRAMMB    = "totalMemoryMB"
	KeyCPUCores      = "cpuCores"
	KeyRuntimeFlavor = "runtimeFlavor"
)

// keyOrder fixes the serialization order so that rewriting the file
// never reshuffles it.
var keyOrder = []string{
	KeyStoragePath,
	KeyClusterName,
	KeyRegistryPort,
	KeyMemoryLimit,
	KeyOS,
	KeyArch,
	KeyTotalRAMMB,
	KeyCPUCores,
	KeyRuntimeFlavor,
}

// Path returns the location of the user configuration file.  It
// prefers the path set by KLAB_CONFIG and falls back to the file
// inside the klab directory.
func Path() (string, error) {
	if ovr := os.Getenv(constants.UserConfigEnvironmentVariable); ovr != "" {
		return file.AbsDir(ovr)
	}

	dir, err := file.GetKlabDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.UserConfigFile), nil
}

// ParseKeyValues parses a string of KEY="value" lines into a map.
// Blank lines and lines starting with '#' are skipped.  Anything else
// that does not fit the format is a configuration error.
func ParseKeyValues(in string) (map[string]string, error) {
	vals := map[string]string{}
	for i, line := range strings.Split(in, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawVal, found := strings.Cut(line, "=")
		if !found {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "config", "line %d is not a KEY=\"value\" pair", i+1)
		}

		val, err := strconv.Unquote(strings.TrimSpace(rawVal))
		if err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "config", "line %d has an unquoted or malformed value", i+1)
		}
		vals[strings.TrimSpace(key)] = val
	}
	return vals, nil
}

// ParseConfig takes a string of KEY="value" lines and parses it into
// a Config structure.  Unknown keys are tolerated so that newer files
// keep working with older builds.
func ParseConfig(in string) (*types.Config, error) {
	vals, err := ParseKeyValues(in)
	if err != nil {
		return nil, err
	}

	ret := &types.Config{
		StoragePath:   vals[KeyStoragePath],
		ClusterName:   vals[KeyClusterName],
		MemoryLimit:   vals[KeyMemoryLimit],
		OS:            vals[KeyOS],
		Arch:          vals[KeyArch],
		RuntimeFlavor: vals[KeyRuntimeFlavor],
	}

	if raw, ok := vals[KeyRegistryPort]; ok && raw != "" {
		port, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "config", "%s %q is not a port number", KeyRegistryPort, raw)
		}
		ret.RegistryPort = uint16(port)
	}
	if raw, ok := vals[KeyTotalRAMMB]; ok && raw != "" {
		ram, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "config", "%s %q is not a size in MB", KeyTotalRAMMB, raw)
		}
		ret.TotalRAMMB = ram
	}
	if raw, ok := vals[KeyCPUCores]; ok && raw != "" {
		cores, err := strconv.Atoi(raw)
		if err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "config", "%s %q is not a core count", KeyCPUCores, raw)
		}
		ret.CPUCores = cores
	}

	return ret, nil
}

// FormatConfig renders a Config as KEY="value" lines in the fixed key
// order.
func FormatConfig(cfg *types.Config) string {
	vals := map[string]string{
		KeyStoragePath:   cfg.StoragePath,
		KeyClusterName:   cfg.ClusterName,
		KeyRegistryPort:  strconv.FormatUint(uint64(cfg.RegistryPort), 10),
		KeyMemoryLimit:   cfg.MemoryLimit,
		KeyOS:            cfg.OS,
		KeyArch:          cfg.Arch,
		KeyTotalRAMMB:    strconv.FormatInt(cfg.TotalRAMMB, 10),
		KeyCPUCores:      strconv.Itoa(cfg.CPUCores),
		KeyRuntimeFlavor: cfg.RuntimeFlavor,
	}

	var sb strings.Builder
	for _, key := range keyOrder {
		sb.WriteString(fmt.Sprintf("%s=%s\n", key, strconv.Quote(vals[key])))
	}
	return sb.String()
}

// DefaultConfig returns the hard-coded configuration defaults.
func DefaultConfig() (*types.Config, error) {
	dir, err := file.GetKlabDir()
	if err != nil {
		return nil, err
	}

	return &types.Config{
		StoragePath:  filepath.Join(dir, constants.UserClustersDir, constants.DefaultClusterAlias),
		ClusterName:  constants.DefaultClusterName,
		RegistryPort: constants.RegistryBasePort,
		MemoryLimit:  constants.DefaultMemorySpec,
	}, nil
}

// Load reads the user configuration.  It starts from the hard-coded
// defaults and merges the file on top when one exists.  The returned
// boolean reports whether a file was found; its absence signals the
// first run.  Environment overrides are applied last.
func Load() (*types.Config, bool, error) {
	def, err := DefaultConfig()
	if err != nil {
		return nil, false, err
	}

	path, err := Path()
	if err != nil {
		return nil, false, err
	}

	configBytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnvironment(def)
		return def, false, nil
	} else if err != nil {
		return nil, false, err
	}

	fromFile, err := ParseConfig(string(configBytes))
	if err != nil {
		return nil, true, err
	}

	merged := types.MergeConfig(def, fromFile)
	applyEnvironment(&merged)
	return &merged, true, nil
}

// Save writes the configuration to the user configuration file,
// creating the klab directory if needed.
func Save(cfg *types.Config) error {
	if _, err := file.EnsureKlabDir(); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(FormatConfig(cfg)), 0600)
}

// applyEnvironment folds the runtime environment knobs into the
// configuration.  These are never persisted.
func applyEnvironment(cfg *types.Config) {
	if isEnvTrue(constants.NonInteractiveEnvironmentVariable) {
		cfg.NonInteractive = true
	}
	if isEnvTrue(constants.LowMemoryEnvironmentVariable) {
		cfg.LowMemory = true
	}
}

func isEnvTrue(name string) bool {
	val := strings.ToLower(os.Getenv(name))
	return val == "1" || val == "true" || val == "yes"
}
