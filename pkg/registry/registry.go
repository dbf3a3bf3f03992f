// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package registry keeps the book of named cluster profiles.  Each
// profile owns an isolated storage path and its own ports so that
// side-by-side environments never collide.  Exactly one profile is
// active at a time.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	units "github.com/docker/go-units"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/oracle-cne/klab/pkg/config/types"
	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
	"github.com/oracle-cne/klab/pkg/klaberr"
	"github.com/oracle-cne/klab/pkg/util/pidlock"
)

const lockTimeout = 10 * time.Second

// Status is the recorded lifecycle state of a cluster profile.
type Status string

const (
	StatusRunning Status = "Running"
	StatusStopped Status = "Stopped"
)

// Record is one cluster profile.
type Record struct {
	Alias     string              `yaml:"alias"`
	Status    Status              `yaml:"status"`
	CreatedAt time.Time           `yaml:"createdAt"`
	Config    types.ClusterConfig `yaml:"config"`
}

// registryFile is the on-disk shape of clusters.yaml.
type registryFile struct {
	Active   string            `yaml:"active,omitempty"`
	Clusters map[string]Record `yaml:"clusters"`
}

// Registry reads and writes the cluster book under a klab directory.
type Registry struct {
	dir string
}

// New returns the registry over the user's klab directory.
func New() (*Registry, error) {
	dir, err := file.EnsureKlabDir()
	if err != nil {
		return nil, err
	}
	return At(dir), nil
}

// At returns a registry rooted at an explicit directory.
func At(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) path() string {
	return filepath.Join(r.dir, constants.ClusterRegistryFilename)
}

func (r *Registry) load() (*registryFile, error) {
	if err := pidlock.WaitForAt(r.dir, lockTimeout); err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(r.path())
	if dropErr := pidlock.DropAt(r.dir); dropErr != nil {
		log.Debugf("Could not drop registry lock: %v", dropErr)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return &registryFile{Clusters: map[string]Record{}}, nil
		}
		return nil, err
	}

	rf := &registryFile{}
	if err = yaml.Unmarshal(contents, rf); err != nil {
		return nil, klaberr.Wrap(klaberr.KindConfigInvalid, "cluster registry", err)
	}
	if rf.Clusters == nil {
		rf.Clusters = map[string]Record{}
	}
	return rf, nil
}

func (r *Registry) save(rf *registryFile) error {
	contents, err := yaml.Marshal(rf)
	if err != nil {
		return err
	}

	if err := pidlock.WaitForAt(r.dir, lockTimeout); err != nil {
		return err
	}
	err = os.WriteFile(r.path(), contents, 0600)
	if dropErr := pidlock.DropAt(r.dir); dropErr != nil {
		log.Debugf("Could not drop registry lock: %v", dropErr)
	}
	return err
}

// Create registers a new cluster profile under alias with the given
// memory specification, e.g. "4Gi".  The profile gets an isolated
// storage path and ports that no other profile uses, and starts out
// stopped.  The first profile created becomes the active one.
func (r *Registry) Create(alias string, memorySpec string) (*Record, error) {
	if alias == "" {
		return nil, klaberr.New(klaberr.KindConfigInvalid, "cluster create", "a cluster profile needs an alias")
	}

	rf, err := r.load()
	if err != nil {
		return nil, err
	}

	if _, ok := rf.Clusters[alias]; ok {
		return nil, klaberr.New(klaberr.KindAlreadyExists, "cluster create", "a cluster named %s already exists", alias)
	}

	memoryBytes, err := units.RAMInBytes(memorySpec)
	if err != nil {
		return nil, klaberr.New(klaberr.KindConfigInvalid, "cluster create", "could not parse memory specification %q: %v", memorySpec, err)
	}

	used := usedPorts(rf)
	apiServerPort, err := allocatePort(used, constants.KubeAPIServerBasePort)
	if err != nil {
		return nil, err
	}
	used[apiServerPort] = true
	registryPort, err := allocatePort(used, constants.RegistryBasePort)
	if err != nil {
		return nil, err
	}

	clustersDir, err := file.EnsureClustersDir(r.dir)
	if err != nil {
		return nil, err
	}
	storagePath := filepath.Join(clustersDir, alias)
	if err = os.MkdirAll(storagePath, 0700); err != nil {
		return nil, err
	}

	record := Record{
		Alias:     alias,
		Status:    StatusStopped,
		CreatedAt: time.Now().UTC(),
		Config: types.ClusterConfig{
			Name:           constants.DefaultClusterName + "-" + alias,
			Alias:          alias,
			Backend:        constants.DefaultBackend,
			StoragePath:    storagePath,
			KubeconfigPath: filepath.Join(storagePath, constants.KubeconfigFilename),
			APIServerPort:  apiServerPort,
			RegistryPort:   registryPort,
			MemorySpec:     memorySpec,
			MemoryMB:       memoryBytes / (1024 * 1024),
			Nodes:          1,
			KubeVersion:    constants.KubeVersion,
		},
	}

	rf.Clusters[alias] = record
	if rf.Active == "" {
		rf.Active = alias
	}
	if err = r.save(rf); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns the profile registered under alias.
func (r *Registry) Get(alias string) (*Record, error) {
	rf, err := r.load()
	if err != nil {
		return nil, err
	}

	record, ok := rf.Clusters[alias]
	if !ok {
		return nil, klaberr.New(klaberr.KindNotFound, "cluster registry", "no cluster named %s is registered", alias)
	}
	return &record, nil
}

// Active returns the active profile, or nil when none is registered.
func (r *Registry) Active() (*Record, error) {
	rf, err := r.load()
	if err != nil {
		return nil, err
	}

	if rf.Active == "" {
		return nil, nil
	}
	record, ok := rf.Clusters[rf.Active]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Resolve returns the profile registered under alias, or the active
// profile when alias is empty.  Lifecycle commands default to the
// active profile, and having none is an error because installation
// always creates one.
func (r *Registry) Resolve(alias string) (*Record, error) {
	if alias != "" {
		return r.Get(alias)
	}

	record, err := r.Active()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, klaberr.New(klaberr.KindNotFound, "cluster registry", "no cluster profile exists; run install first")
	}
	return record, nil
}

// Switch makes alias the active profile and attempts to restore its
// kubeconfig as the ambient one.  Restoring is best-effort: when the
// kubeconfig cannot be loaded the switch degrades to registry-only,
// the previous kubeconfig link stays intact, and degraded is true.
// Switching to an unknown alias fails and leaves the active profile
// unchanged.
func (r *Registry) Switch(alias string) (degraded bool, err error) {
	rf, err := r.load()
	if err != nil {
		return false, err
	}

	record, ok := rf.Clusters[alias]
	if !ok {
		return false, klaberr.New(klaberr.KindNotFound, "cluster switch", "no cluster named %s is registered", alias)
	}

	rf.Active = alias
	if err = r.save(rf); err != nil {
		return false, err
	}

	if err = r.restoreKubeconfig(&record); err != nil {
		log.Warnf("Switched to %s, but its kubeconfig could not be restored: %v", alias, err)
		return true, nil
	}
	return false, nil
}

// restoreKubeconfig validates the profile's kubeconfig and atomically
// repoints the well-known kubeconfig link at it.
func (r *Registry) restoreKubeconfig(record *Record) error {
	if _, err := clientcmd.LoadFromFile(record.Config.KubeconfigPath); err != nil {
		return err
	}

	link := filepath.Join(r.dir, constants.KubeconfigFilename)
	staged := link + ".next"
	if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Symlink(record.Config.KubeconfigPath, staged); err != nil {
		return err
	}
	return os.Rename(staged, link)
}

// SetStatus records the profile's lifecycle state.
func (r *Registry) SetStatus(alias string, status Status) error {
	rf, err := r.load()
	if err != nil {
		return err
	}

	record, ok := rf.Clusters[alias]
	if !ok {
		return klaberr.New(klaberr.KindNotFound, "cluster registry", "no cluster named %s is registered", alias)
	}

	record.Status = status
	rf.Clusters[alias] = record
	return r.save(rf)
}

// Update applies a mutation to a profile's record and persists the
// result.  Installation uses it to fold sizing decisions and the
// installed component set into the record.
func (r *Registry) Update(alias string, mutate func(*Record)) error {
	rf, err := r.load()
	if err != nil {
		return err
	}

	record, ok := rf.Clusters[alias]
	if !ok {
		return klaberr.New(klaberr.KindNotFound, "cluster registry", "no cluster named %s is registered", alias)
	}

	mutate(&record)
	rf.Clusters[alias] = record
	return r.save(rf)
}

// Remove forgets a profile.  Removing the active profile leaves no
// profile active.  Removing an unknown alias succeeds so teardown can
// be repeated.
func (r *Registry) Remove(alias string) error {
	rf, err := r.load()
	if err != nil {
		return err
	}

	delete(rf.Clusters, alias)
	if rf.Active == alias {
		rf.Active = ""
	}
	return r.save(rf)
}

// List returns every profile ordered by alias, so repeated listings
// are diffable.
func (r *Registry) List() ([]Record, error) {
	rf, err := r.load()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rf.Clusters))
	for _, record := range rf.Clusters {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Alias < records[j].Alias
	})
	return records, nil
}

// ActiveAlias returns the name of the active profile, if any.
func (r *Registry) ActiveAlias() (string, error) {
	rf, err := r.load()
	if err != nil {
		return "", err
	}
	return rf.Active, nil
}

// Backup archives the profile's storage directory into the backups
// directory.  The archive is named by alias and timestamp so repeated
// backups never clobber each other.
func (r *Registry) Backup(alias string) (string, error) {
	record, err := r.Get(alias)
	if err != nil {
		return "", err
	}
	if record.Config.StoragePath == "" {
		return "", klaberr.New(klaberr.KindNotFound, "cluster backup", "cluster %s has no storage path", alias)
	}
	if _, err = os.Stat(record.Config.StoragePath); err != nil {
		return "", klaberr.New(klaberr.KindNotFound, "cluster backup", "storage path %s is missing", record.Config.StoragePath)
	}

	backupsDir, err := file.EnsureBackupsDir(r.dir)
	if err != nil {
		return "", err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	archivePath := filepath.Join(backupsDir, fmt.Sprintf("%s-%s.tar.gz", alias, stamp))
	if err = archiveDir(record.Config.StoragePath, archivePath); err != nil {
		return "", err
	}
	return archivePath, nil
}

func usedPorts(rf *registryFile) map[uint16]bool {
	used := map[uint16]bool{}
	for _, record := range rf.Clusters {
		used[record.Config.APIServerPort] = true
		used[record.Config.RegistryPort] = true
	}
	return used
}

// allocatePort finds the first port at or above base that no profile
// uses yet.  The scan is bounded; a pathological registry fails
// rather than walking the whole port space.
func allocatePort(used map[uint16]bool, base uint16) (uint16, error) {
	for offset := 0; offset < constants.PortScanLimit; offset++ {
		port := base + uint16(offset)
		if !used[port] {
			return port, nil
		}
	}
	return 0, klaberr.New(klaberr.KindNetworkConflict, "cluster create", "no free port within %d of %d", constants.PortScanLimit, base)
}
