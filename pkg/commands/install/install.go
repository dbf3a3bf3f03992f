// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package install implements the end-to-end installation flow: profile
// the host, size the cluster, check feasibility, then drive the
// provisioning steps through the recovery-aware executor.
package install

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	log "github.com/sirupsen/logrus"

	"github.com/oracle-cne/klab/pkg/catalog"
	"github.com/oracle-cne/klab/pkg/config"
	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/k8s"
	k8sclient "github.com/oracle-cne/klab/pkg/k8s/client"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/monitor"
	"github.com/oracle-cne/klab/pkg/orchestrator"
	"github.com/oracle-cne/klab/pkg/plan"
	"github.com/oracle-cne/klab/pkg/provision"
	"github.com/oracle-cne/klab/pkg/registry"
	"github.com/oracle-cne/klab/pkg/system"
	"github.com/oracle-cne/klab/pkg/util"
	"github.com/oracle-cne/klab/pkg/util/logutils"
)

// Options control one installation run.
type Options struct {
	// Components overrides the tier's default component selection.
	Components []string

	// DryRun prints the installation plan without changing anything.
	DryRun bool

	// NonInteractive skips the confirmation prompt.
	NonInteractive bool

	// LowMemory installs the minimal component set.
	LowMemory bool

	// Registry overrides the cluster registry, for tests.
	Registry *registry.Registry
}

// Seams for executor construction and cluster readiness, replaced in
// tests.
var (
	newExecutor       = orchestrator.NewExecutor
	getKubeClient     = k8sclient.GetKubeClient
	waitForAPIServer  = k8s.WaitForAPIServer
	waitForNodesReady = k8s.WaitForNodesReady
)

// step is one journaled unit of installation work.
type step struct {
	name     string
	message  string
	action   func() error
	teardown orchestrator.TeardownFunc
}

// Install drives a full installation: plan, confirm, execute.
func Install(octx *orchestrator.Context, opts *Options) error {
	facts := octx.Profiler.Facts()
	tier := plan.DeriveTier(facts.TotalRAMMB)
	sizing := plan.SizingFor(tier)

	components, err := selectComponents(octx.Catalog, opts.Components, sizing)
	if err != nil {
		return err
	}

	availableMB := plan.AvailableForClusterMB(facts.TotalRAMMB, facts.OS, facts.Arch)
	var pruned []catalog.ComponentProfile
	if opts.LowMemory || octx.Config.LowMemory {
		kept := plan.FeasibleSubsetOf(components, availableMB, true)
		pruned = difference(components, kept)
		components = kept
	} else if !plan.IsFeasible(components, availableMB) {
		return klaberr.New(klaberr.KindInsufficientMemory, "feasibility",
			"the %d selected components need %dMB but the budget is %dMB; rerun with --low-memory or select fewer components",
			len(components), plan.PredictMemoryMB(components), plan.Threshold(availableMB))
	}

	printPlan(facts, tier, availableMB, components, pruned)
	if opts.DryRun {
		return nil
	}

	if !confirm(octx.Config, opts) {
		log.Info("Installation cancelled")
		return nil
	}

	reg := opts.Registry
	if reg == nil {
		if reg, err = registry.New(); err != nil {
			return err
		}
	}

	record, err := activeOrDefault(reg, octx.Config)
	if err != nil {
		return err
	}

	names := componentNames(components)
	err = reg.Update(record.Alias, func(rec *registry.Record) {
		rec.Config.Nodes = sizing.Nodes
		rec.Config.Components = names
	})
	if err != nil {
		return err
	}
	if record, err = reg.Get(record.Alias); err != nil {
		return err
	}

	octx.ClusterConfig = &record.Config

	backend, err := provision.CreateBackend(octx.Config, octx.ClusterConfig)
	if err != nil {
		return err
	}
	defer backend.Close()

	return execute(octx, reg, record, backend, components)
}

// execute walks the installation steps through the executor.  Each
// step is journaled and retried; the first step that stays failed
// rolls the whole installation back.
func execute(octx *orchestrator.Context, reg *registry.Registry, record *registry.Record, backend provision.Backend, components []catalog.ComponentProfile) error {
	ctx := context.Background()
	executor := newExecutor(octx)

	mon := monitor.New(octx.Profiler, record.Config.StoragePath)
	mon.Start()
	defer mon.Stop()

	steps := []step{
		{
			name:    "preflight",
			message: "Checking prerequisites",
			action:  func() error { return preflight(ctx, octx, backend) },
		},
		{
			name:    "cluster",
			message: "Provisioning the cluster",
			action: func() error {
				existed, err := backend.Provision(ctx)
				if existed {
					log.Debugf("Adopted an existing cluster")
				}
				return err
			},
			teardown: func() error { return backend.Delete(ctx) },
		},
		{
			name:    "kubeconfig",
			message: "Waiting for the Kubernetes cluster",
			action:  func() error { return clusterReady(reg, record, backend) },
		},
	}

	for _, component := range components {
		name := component.Name
		steps = append(steps, step{
			name:     name,
			message:  "Installing the " + name + " component",
			action:   func() error { return backend.InstallComponent(ctx, name) },
			teardown: func() error { return backend.RemoveComponent(ctx, name) },
		})
	}

	steps = append(steps, step{
		name:     "activate",
		message:  "Recording the cluster as running",
		action:   func() error { return reg.SetStatus(record.Alias, registry.StatusRunning) },
		teardown: func() error { return reg.SetStatus(record.Alias, registry.StatusStopped) },
	})

	for i := range steps {
		st := steps[i]
		if st.teardown != nil {
			executor.RegisterTeardown(st.name, st.teardown)
		}

		waiter := logutils.Waiter{
			Message:      st.message,
			WaitFunction: func(interface{}) error { return executor.RunStep(st.name, st.action) },
		}
		failed := logutils.WaitFor(logutils.Info, []*logutils.Waiter{&waiter})
		logAlerts(mon.Drain())
		if failed {
			if rbErr := executor.Rollback(); rbErr != nil {
				log.Errorf("Rollback did not fully complete: %v", rbErr)
			}
			return waiter.Error
		}
	}

	octx.Profiler.InvalidateUsage()
	if err := octx.Journal.Clear(); err != nil {
		return err
	}
	if err := persistFacts(octx); err != nil {
		return err
	}

	log.Info("The cluster is ready")
	fmt.Printf("\nTo use it:\n\n    export KUBECONFIG=%s\n    kubectl get nodes\n\n", record.Config.KubeconfigPath)
	return nil
}

// preflight confirms the tooling exists and the runtime answers
// before anything on the host is mutated.
func preflight(ctx context.Context, octx *orchestrator.Context, backend provision.Backend) error {
	if err := backend.Verify(ctx); err != nil {
		return err
	}

	running, err := octx.Profiler.RuntimeRunning()
	if err != nil {
		// The probe cannot tell.  Keep going; provisioning surfaces
		// the truth with a classified error.
		log.Debugf("Could not determine whether the container runtime is running: %v", err)
		return nil
	}
	if !running {
		flavor, _ := octx.Profiler.RuntimeFlavor()
		return klaberr.New(klaberr.KindRuntimeNotRunning, "preflight", "the %s runtime is installed but not running", flavor)
	}
	return nil
}

// clusterReady waits for the API server and nodes, then repoints the
// managed kubeconfig link at this profile.
func clusterReady(reg *registry.Registry, record *registry.Record, backend provision.Backend) error {
	restConfig, client, err := getKubeClient(backend.KubeconfigPath())
	if err != nil {
		return klaberr.Wrap(klaberr.KindInstallationFailed, "kubeconfig", err)
	}
	if err = waitForAPIServer(restConfig); err != nil {
		return err
	}
	if err = waitForNodesReady(client, record.Config.Nodes); err != nil {
		return err
	}

	degraded, err := reg.Switch(record.Alias)
	if err != nil {
		return err
	}
	if degraded {
		return klaberr.New(klaberr.KindInstallationFailed, "kubeconfig", "the cluster is up but its kubeconfig could not be linked")
	}
	return nil
}

// confirm asks the user to proceed.  Anything but an explicit yes
// declines.  The prompt is skipped when stdin is not a terminal.
func confirm(cfg *types.Config, opts *Options) bool {
	if opts.NonInteractive || cfg.NonInteractive || !util.StdinIsTTY() {
		return true
	}

	var userInput string
	fmt.Print("Proceed with the installation? (y/N): ")
	fmt.Scanln(&userInput)
	return strings.ToLower(userInput) == "y"
}

// activeOrDefault resolves the profile to install into, creating the
// default profile on first use.
func activeOrDefault(reg *registry.Registry, cfg *types.Config) (*registry.Record, error) {
	record, err := reg.Active()
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	memorySpec := cfg.MemoryLimit
	if memorySpec == "" {
		memorySpec = constants.DefaultMemorySpec
	}
	log.Infof("No cluster profile exists yet; creating the %s profile", constants.DefaultClusterAlias)
	return reg.Create(constants.DefaultClusterAlias, memorySpec)
}

// selectComponents resolves the component set to install: an explicit
// request, or the first components of the tier's default count.  The
// result is in priority order either way.
func selectComponents(cat *catalog.Catalog, requested []string, sizing plan.Sizing) ([]catalog.ComponentProfile, error) {
	supported, err := cat.SupportedFor(constants.KubeVersion)
	if err != nil {
		return nil, err
	}

	if len(requested) == 0 {
		if len(supported) > sizing.DefaultComponents {
			return supported[:sizing.DefaultComponents], nil
		}
		return supported, nil
	}

	byName := map[string]catalog.ComponentProfile{}
	for _, component := range supported {
		byName[component.Name] = component
	}

	components := make([]catalog.ComponentProfile, 0, len(requested))
	for _, name := range requested {
		name = strings.TrimSpace(name)
		component, ok := byName[name]
		if !ok {
			if _, known := cat.Get(name); known {
				return nil, klaberr.New(klaberr.KindConfigInvalid, "select components", "component %s needs a newer Kubernetes than %s", name, constants.KubeVersion)
			}
			return nil, klaberr.New(klaberr.KindConfigInvalid, "select components", "the catalog has no component named %s; known components are %s", name, strings.Join(cat.Names(), ", "))
		}
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].Priority < components[j].Priority
	})
	return components, nil
}

// difference returns the components of all that are missing from kept,
// preserving order.
func difference(all []catalog.ComponentProfile, kept []catalog.ComponentProfile) []catalog.ComponentProfile {
	keptNames := map[string]bool{}
	for _, component := range kept {
		keptNames[component.Name] = true
	}

	missing := []catalog.ComponentProfile{}
	for _, component := range all {
		if !keptNames[component.Name] {
			missing = append(missing, component)
		}
	}
	return missing
}

func componentNames(components []catalog.ComponentProfile) []string {
	names := make([]string, 0, len(components))
	for _, component := range components {
		names = append(names, component.Name)
	}
	return names
}

// printPlan renders what the installation intends to do and the
// arithmetic it used to decide.
func printPlan(facts system.Facts, tier plan.Tier, availableMB int64, components []catalog.ComponentProfile, pruned []catalog.ComponentProfile) {
	log.Infof("Host: %s/%s with %dMB of memory and %d CPUs (%s tier)", facts.OS, facts.Arch, facts.TotalRAMMB, facts.CPUCores, tier)
	log.Infof("Memory pool for the cluster: %dMB, budget after safety factor: %dMB, predicted need: %dMB",
		availableMB, plan.Threshold(availableMB), plan.PredictMemoryMB(components))

	table := uitable.New()
	table.AddRow("COMPONENT", "KIND", "MEMORY", "ACTION")
	for _, component := range components {
		table.AddRow(component.Name, component.Kind, fmt.Sprintf("%dMB", component.MinMemoryMB), "install")
	}
	for _, component := range pruned {
		table.AddRow(component.Name, component.Kind, fmt.Sprintf("%dMB", component.MinMemoryMB), "skip (does not fit)")
	}
	fmt.Println(table)
}

// persistFacts caches the host profile in the configuration file so
// later runs can render it without probing.
func persistFacts(octx *orchestrator.Context) error {
	facts := octx.Profiler.Facts()
	octx.Config.OS = facts.OS
	octx.Config.Arch = facts.Arch
	octx.Config.TotalRAMMB = facts.TotalRAMMB
	octx.Config.CPUCores = facts.CPUCores
	octx.Config.RuntimeFlavor = facts.RuntimeFlavor
	return config.Save(octx.Config)
}

func logAlerts(alerts []monitor.Alert) {
	for _, alert := range alerts {
		log.Warn(alert.Message)
	}
}
