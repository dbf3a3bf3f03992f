// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package system

import (
	"net"
	"net/url"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"

	"github.com/oracle-cne/klab/pkg/cache"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/util"
)

// managerPatterns maps kubeconfig context naming conventions to the
// local cluster manager that creates them.  Our own provisioned
// clusters come out of the manager as k3d-klab-*, so that pattern has
// to win over the plain k3d one.
var managerPatterns = []struct {
	prefix  string
	manager string
}{
	{"k3d-" + constants.DefaultClusterName + "-", "klab"},
	{"k3d-", "k3d"},
	{"kind-", "kind"},
	{"minikube", "minikube"},
	{constants.DefaultClusterName + "-", "klab"},
}

// CompetingClusters reports the local cluster managers that currently
// have a live cluster on this host.  These clusters draw from the
// same memory pool, so the feasibility math needs to know about them.
func (p *Profiler) CompetingClusters() ([]string, error) {
	managers, err := cache.Memoize(p.cache, CacheKeyCompetingClusters, constants.ProbeTTLLiveness, []string{CacheKeyAvailableRAM}, p.probeCompetingClusters)
	if err != nil {
		p.errs.RecordError("system.CompetingClusters", err)
		return nil, err
	}
	return managers, nil
}

func (p *Profiler) probeCompetingClusters() ([]string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	kubeconfig, err := rules.Load()
	if err != nil {
		return nil, klaberr.Wrap(klaberr.KindProbeUnavailable, "probe", err)
	}

	live := util.NewSet[string]()
	for manager, servers := range matchClusterManagers(kubeconfig) {
		for _, server := range servers {
			if p.serverAnswers(server) {
				live.Add(manager)
				break
			}
		}
	}

	managers := live.Slice()
	sort.Strings(managers)
	return managers, nil
}

// matchClusterManagers scans kubeconfig contexts for the naming
// conventions of known local cluster managers and collects the API
// server endpoints registered for each.
func matchClusterManagers(kubeconfig *api.Config) map[string][]string {
	matches := map[string][]string{}
	for contextName, context := range kubeconfig.Contexts {
		manager := managerFor(contextName, context.Cluster)
		if manager == "" {
			continue
		}

		cluster, ok := kubeconfig.Clusters[context.Cluster]
		if !ok || cluster.Server == "" {
			continue
		}
		matches[manager] = append(matches[manager], cluster.Server)
	}
	return matches
}

func managerFor(contextName string, clusterName string) string {
	for _, pattern := range managerPatterns {
		if strings.HasPrefix(contextName, pattern.prefix) || strings.HasPrefix(clusterName, pattern.prefix) {
			return pattern.manager
		}
	}
	return ""
}

// serverAnswers tests whether an API server endpoint accepts TCP
// connections within the probe timeout.
func (p *Profiler) serverAnswers(server string) bool {
	parsed, err := url.Parse(server)
	if err != nil {
		log.Debugf("Ignoring unparseable API server endpoint %s: %v", server, err)
		return false
	}

	addr := parsed.Host
	if parsed.Port() == "" {
		addr = net.JoinHostPort(parsed.Hostname(), "443")
	}

	conn, err := p.dial("tcp", addr, constants.ProbeDialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
