// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package catalog

import (
	"embed"
	"sort"

	"github.com/Masterminds/semver/v3"
	"sigs.k8s.io/yaml"

	"github.com/oracle-cne/klab/pkg/klaberr"
)

//go:embed components.yaml
var catalogData embed.FS

// Component kinds.  Infrastructure components are required plumbing,
// addons are optional features layered on top.
const (
	KindInfrastructure = "infrastructure"
	KindAddon          = "addon"
)

// ComponentProfile describes one optional cluster component: what it
// is, how much memory it needs to be useful, and how important it is
// relative to the others.  Lower priority numbers are more important.
type ComponentProfile struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	MinMemoryMB    int64  `json:"minMemoryMB"`
	Priority       int    `json:"priority"`
	MinKubeVersion string `json:"minKubeVersion"`
	Description    string `json:"description"`
}

type catalogDoc struct {
	Components []ComponentProfile `json:"components"`
}

// Catalog is the fixed set of components that can be layered onto a
// cluster.  It is immutable once loaded.
type Catalog struct {
	components []ComponentProfile
	byName     map[string]ComponentProfile
}

// Load parses the embedded component catalog.
func Load() (*Catalog, error) {
	data, err := catalogData.ReadFile("components.yaml")
	if err != nil {
		return nil, err
	}

	doc := catalogDoc{}
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, klaberr.Wrap(klaberr.KindConfigInvalid, "catalog", err)
	}

	byName := map[string]ComponentProfile{}
	byPriority := map[int]string{}
	for _, component := range doc.Components {
		if component.Name == "" || component.MinMemoryMB <= 0 {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "catalog", "component %q has no name or no memory requirement", component.Name)
		}
		if _, ok := byName[component.Name]; ok {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "catalog", "component %s appears twice", component.Name)
		}
		if other, ok := byPriority[component.Priority]; ok {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "catalog", "components %s and %s share priority %d", other, component.Name, component.Priority)
		}
		if _, err = semver.NewVersion(component.MinKubeVersion); err != nil {
			return nil, klaberr.New(klaberr.KindConfigInvalid, "catalog", "component %s has unparseable minimum version %q", component.Name, component.MinKubeVersion)
		}
		byName[component.Name] = component
		byPriority[component.Priority] = component.Name
	}

	components := make([]ComponentProfile, len(doc.Components))
	copy(components, doc.Components)
	sort.Slice(components, func(i, j int) bool {
		return components[i].Priority < components[j].Priority
	})

	return &Catalog{
		components: components,
		byName:     byName,
	}, nil
}

// Components returns every component in priority order.
func (c *Catalog) Components() []ComponentProfile {
	ret := make([]ComponentProfile, len(c.components))
	copy(ret, c.components)
	return ret
}

// Get looks a component up by name.
func (c *Catalog) Get(name string) (ComponentProfile, bool) {
	component, ok := c.byName[name]
	return component, ok
}

// Names returns the component names in priority order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.components))
	for _, component := range c.components {
		names = append(names, component.Name)
	}
	return names
}

// SupportedFor filters the catalog down to components whose minimum
// Kubernetes version is satisfied by the given cluster version.
func (c *Catalog) SupportedFor(kubeVersion string) ([]ComponentProfile, error) {
	cluster, err := semver.NewVersion(kubeVersion)
	if err != nil {
		return nil, klaberr.New(klaberr.KindConfigInvalid, "catalog", "cluster version %q is unparseable", kubeVersion)
	}

	ret := []ComponentProfile{}
	for _, component := range c.components {
		min, err := semver.NewVersion(component.MinKubeVersion)
		if err != nil {
			return nil, err
		}
		if !cluster.LessThan(min) {
			ret = append(ret, component)
		}
	}
	return ret, nil
}
