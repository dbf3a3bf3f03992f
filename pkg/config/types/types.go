// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package types

// Config is the persisted tool configuration along with the system
// facts captured on the most recent profile.  The persisted fields map
// one to one onto the KEY="value" pairs in the user configuration
// file.
type Config struct {
	StoragePath   string
	ClusterName   string
	RegistryPort  uint16
	MemoryLimit   string
	OS            string
	Arch          string
	TotalRAMMB    int64
	CPUCores      int
	RuntimeFlavor string

	// Runtime knobs.  These come from flags or the environment
	// and are never written to the configuration file.
	NonInteractive bool
	LowMemory      bool
}

// ClusterConfig describes one cluster profile: how it is provisioned
// and where its artifacts live.  ClusterConfigs are persisted in the
// cluster registry.
type ClusterConfig struct {
	Name           string   `yaml:"name"`
	Alias          string   `yaml:"alias"`
	Backend        string   `yaml:"backend"`
	StoragePath    string   `yaml:"storagePath"`
	KubeconfigPath string   `yaml:"kubeconfig"`
	APIServerPort  uint16   `yaml:"apiServerPort"`
	RegistryPort   uint16   `yaml:"registryPort"`
	MemorySpec     string   `yaml:"memory"`
	MemoryMB       int64    `yaml:"memoryMB"`
	Nodes          int      `yaml:"nodes"`
	KubeVersion    string   `yaml:"kubeVersion"`
	Components     []string `yaml:"components,omitempty"`
}

// MergeConfig folds an override configuration into a set of defaults.
// Fields that are set in the override win.
func MergeConfig(def *Config, ovr *Config) Config {
	return Config{
		StoragePath:    ies(def.StoragePath, ovr.StoragePath),
		ClusterName:    ies(def.ClusterName, ovr.ClusterName),
		RegistryPort:   ieu(def.RegistryPort, ovr.RegistryPort),
		MemoryLimit:    ies(def.MemoryLimit, ovr.MemoryLimit),
		OS:             ies(def.OS, ovr.OS),
		Arch:           ies(def.Arch, ovr.Arch),
		TotalRAMMB:     iei64(def.TotalRAMMB, ovr.TotalRAMMB),
		CPUCores:       iei(def.CPUCores, ovr.CPUCores),
		RuntimeFlavor:  ies(def.RuntimeFlavor, ovr.RuntimeFlavor),
		NonInteractive: def.NonInteractive || ovr.NonInteractive,
		LowMemory:      def.LowMemory || ovr.LowMemory,
	}
}

// ies is short for "If Else String".  If the second argument is
// non-empty, it is returned.  Otherwise, the first argument
// is returned.
func ies(i string, e string) string {
	if e != "" {
		return e
	}
	return i
}

// ieu is short for "If Else Uint".  If the second argument is
// non-zero, it is returned.  Otherwise, the first argument
// is returned.
func ieu(i uint16, e uint16) uint16 {
	if e != 0 {
		return e
	}
	return i
}

// iei64 is short for "If Else Int64".  If the second argument is
// non-zero, it is returned.  Otherwise, the first argument
// is returned.
func iei64(i int64, e int64) int64 {
	if e != 0 {
		return e
	}
	return i
}

// iei is short for "If Else Int".  If the second argument is
// non-zero, it is returned.  Otherwise, the first argument
// is returned.
func iei(i int, e int) int {
	if e != 0 {
		return e
	}
	return i
}
