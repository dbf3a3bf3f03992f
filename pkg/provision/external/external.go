// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package external

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/unix"
)

const (
	BackendName = "external"

	managerBinary            = "k3d"
	managerVersionConstraint = ">= 5.0.0"
)

// managedCluster is the subset of `k3d cluster list` output the
// backend reads.
type managedCluster struct {
	Name           string `json:"name"`
	ServersCount   int    `json:"serversCount"`
	ServersRunning int    `json:"serversRunning"`
}

// ExternalBackend provisions clusters by driving an external cluster
// manager binary.  All interaction goes through the manager's CLI; no
// state is kept beyond what the manager itself tracks.
type ExternalBackend struct {
	config        *types.Config
	clusterConfig *types.ClusterConfig

	// Command seams, replaced in tests.
	run           func(ctx context.Context, name string, args ...string) (string, string, error)
	commandExists func(string) bool
}

// CreateBackend builds an external backend for the given cluster.
func CreateBackend(config *types.Config, clusterConfig *types.ClusterConfig) (provision.Backend, error) {
	return &ExternalBackend{
		config:        config,
		clusterConfig: clusterConfig,
		run:           unix.RunCommandContext,
		commandExists: unix.CommandExists,
	}, nil
}

// Verify checks that the cluster manager is installed and recent
// enough to honor the flags the backend passes it.
func (eb *ExternalBackend) Verify(ctx context.Context) error {
	if !eb.commandExists(managerBinary) {
		return klaberr.New(klaberr.KindRuntimeUnavailable, "verify dependencies", "%s is not installed", managerBinary)
	}

	stdout, stderr, err := eb.run(ctx, managerBinary, "version")
	if err != nil {
		return provision.WrapCommandError("verify dependencies", stderr, err)
	}

	version, err := parseManagerVersion(stdout)
	if err != nil {
		log.Debugf("Could not parse %s version, continuing anyway: %v", managerBinary, err)
		return nil
	}

	constraint, err := semver.NewConstraint(managerVersionConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return klaberr.New(klaberr.KindRuntimeUnavailable, "verify dependencies", "%s %s is too old, need %s", managerBinary, version, managerVersionConstraint)
	}
	return nil
}

// Provision brings the cluster into existence.  An already existing
// cluster is adopted rather than recreated; its kubeconfig is
// refreshed so the caller always ends up with a usable one.
func (eb *ExternalBackend) Provision(ctx context.Context) (bool, error) {
	clusters, err := eb.list(ctx)
	if err != nil {
		return false, err
	}

	if _, ok := clusters[eb.clusterConfig.Name]; ok {
		log.Debugf("Cluster %s already exists, adopting it", eb.clusterConfig.Name)
		return true, eb.writeKubeconfig(ctx)
	}

	_, stderr, err := eb.run(ctx, managerBinary, eb.createArgs()...)
	if err != nil {
		return false, provision.WrapCommandError("cluster provision", stderr, err)
	}
	return false, eb.writeKubeconfig(ctx)
}

// Start brings a stopped cluster back up.
func (eb *ExternalBackend) Start(ctx context.Context) error {
	exists, running, err := eb.inspect(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return klaberr.New(klaberr.KindNotFound, "cluster start", "cluster %s does not exist", eb.clusterConfig.Name)
	}
	if running {
		return nil
	}

	_, stderr, err := eb.run(ctx, managerBinary, "cluster", "start", eb.clusterConfig.Name)
	if err != nil {
		return provision.WrapCommandError("cluster start", stderr, err)
	}
	return nil
}

// Stop halts the cluster without destroying it.
func (eb *ExternalBackend) Stop(ctx context.Context) error {
	exists, running, err := eb.inspect(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return klaberr.New(klaberr.KindNotFound, "cluster stop", "cluster %s does not exist", eb.clusterConfig.Name)
	}
	if !running {
		return nil
	}

	_, stderr, err := eb.run(ctx, managerBinary, "cluster", "stop", eb.clusterConfig.Name)
	if err != nil {
		return provision.WrapCommandError("cluster stop", stderr, err)
	}
	return nil
}

// Delete tears the cluster down.  Deleting a cluster that is already
// gone succeeds so that rollback can be repeated safely.
func (eb *ExternalBackend) Delete(ctx context.Context) error {
	exists, _, err := eb.inspect(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	_, stderr, err := eb.run(ctx, managerBinary, "cluster", "delete", eb.clusterConfig.Name)
	if err != nil {
		return provision.WrapCommandError("cluster teardown", stderr, err)
	}
	return nil
}

// Running reports whether the cluster has live server nodes.
func (eb *ExternalBackend) Running(ctx context.Context) (bool, error) {
	_, running, err := eb.inspect(ctx)
	return running, err
}

func (eb *ExternalBackend) KubeconfigPath() string {
	return eb.clusterConfig.KubeconfigPath
}

func (eb *ExternalBackend) APIServerAddress() string {
	return fmt.Sprintf("https://127.0.0.1:%d", eb.clusterConfig.APIServerPort)
}

func (eb *ExternalBackend) Close() error {
	return nil
}

// createArgs assembles the cluster creation command line from the
// cluster configuration.
func (eb *ExternalBackend) createArgs() []string {
	cc := eb.clusterConfig
	args := []string{
		"cluster", "create", cc.Name,
		"--api-port", fmt.Sprintf("127.0.0.1:%d", cc.APIServerPort),
		"--kubeconfig-update-default=false",
		"--kubeconfig-switch-context=false",
		"--wait",
	}
	if cc.RegistryPort != 0 {
		args = append(args, "--registry-create", fmt.Sprintf("%s-registry:127.0.0.1:%d", cc.Name, cc.RegistryPort))
	}
	if cc.Nodes > 1 {
		args = append(args, "--agents", strconv.Itoa(cc.Nodes-1))
	}
	if cc.MemoryMB > 0 {
		args = append(args, "--servers-memory", fmt.Sprintf("%dM", cc.MemoryMB))
	}
	return args
}

// list returns the manager's clusters by name.
func (eb *ExternalBackend) list(ctx context.Context) (map[string]managedCluster, error) {
	stdout, stderr, err := eb.run(ctx, managerBinary, "cluster", "list", "--output", "json")
	if err != nil {
		return nil, provision.WrapCommandError("cluster inventory", stderr, err)
	}

	clusters := []managedCluster{}
	if err = json.Unmarshal([]byte(stdout), &clusters); err != nil {
		return nil, klaberr.Wrap(klaberr.KindProbeUnavailable, "cluster inventory", err)
	}

	byName := map[string]managedCluster{}
	for _, cluster := range clusters {
		byName[cluster.Name] = cluster
	}
	return byName, nil
}

// inspect reports whether this backend's cluster exists and whether
// it is running.
func (eb *ExternalBackend) inspect(ctx context.Context) (bool, bool, error) {
	clusters, err := eb.list(ctx)
	if err != nil {
		return false, false, err
	}

	cluster, ok := clusters[eb.clusterConfig.Name]
	if !ok {
		return false, false, nil
	}
	return true, cluster.ServersRunning > 0, nil
}

// writeKubeconfig pulls the cluster's kubeconfig out of the manager
// and stores it at the configured path.
func (eb *ExternalBackend) writeKubeconfig(ctx context.Context) error {
	stdout, stderr, err := eb.run(ctx, managerBinary, "kubeconfig", "get", eb.clusterConfig.Name)
	if err != nil {
		return provision.WrapCommandError("kubeconfig export", stderr, err)
	}

	path := eb.clusterConfig.KubeconfigPath
	if err = os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(stdout), 0600)
}

// parseManagerVersion extracts the manager's semantic version from
// its version banner, e.g. "k3d version v5.6.3".
func parseManagerVersion(banner string) (*semver.Version, error) {
	line, _, _ := strings.Cut(banner, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty version banner")
	}
	raw := strings.TrimPrefix(fields[len(fields)-1], "v")
	return semver.NewVersion(raw)
}
