// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/oracle-cne/klab/pkg/constants"
	"github.com/oracle-cne/klab/pkg/file"
)

// EnvVarKubeConfig Name of Environment Variable for KUBECONFIG
const EnvVarKubeConfig = "KUBECONFIG"

// EnvVarTestKubeConfig Name of Environment Variable for test KUBECONFIG
const EnvVarTestKubeConfig = "TEST_KUBECONFIG"

const APIServerBurst = 150
const APIServerQPS = 100

// fakeClient is for unit testing
var fakeClient kubernetes.Interface

// SetFakeClient for unit tests
func SetFakeClient(client kubernetes.Interface) {
	fakeClient = client
}

// ClearFakeClient for unit tests
func ClearFakeClient() {
	fakeClient = nil
}

// sanitizePath converts the input path to an absolute path and checks
// that the file exists.  The boolean argument is returned unchanged
// and reports whether the path came from a fallback rather than an
// explicit setting.
func sanitizePath(path string, fallback bool) (string, bool, error) {
	log.Debugf("Sanitizing %s", path)
	path, err := filepath.Abs(path)
	if err != nil {
		return path, fallback, err
	}

	_, err = os.Stat(path)
	if err != nil {
		return path, fallback, err
	}

	return path, fallback, nil
}

// GetKubeConfigLocation resolves the kubeconfig to operate on.  An
// explicit path wins, then the TEST_KUBECONFIG and KUBECONFIG
// environment variables, then the kubeconfig link of the active
// cluster profile, then ~/.kube/config.
func GetKubeConfigLocation(kubeconfigPath string) (string, bool, error) {
	if kubeconfigPath != "" {
		return sanitizePath(kubeconfigPath, false)
	}

	if testKubeConfig := os.Getenv(EnvVarTestKubeConfig); len(testKubeConfig) > 0 {
		path, fallback, err := sanitizePath(testKubeConfig, false)
		if err != nil {
			err = fmt.Errorf("failed to access the kubeconfig set by the environment variable %s", EnvVarTestKubeConfig)
		}
		return path, fallback, err
	}

	if kubeConfig := os.Getenv(EnvVarKubeConfig); len(kubeConfig) > 0 {
		path, fallback, err := sanitizePath(kubeConfig, false)
		if err != nil {
			err = fmt.Errorf("failed to access the kubeconfig set by the environment variable %s", EnvVarKubeConfig)
		}
		return path, fallback, err
	}

	// Switching the active profile repoints this link, so commands
	// that fall through to it follow the switch automatically.
	if dir, err := file.GetKlabDir(); err == nil {
		managed := filepath.Join(dir, constants.KubeconfigFilename)
		if _, serr := os.Stat(managed); serr == nil {
			return sanitizePath(managed, true)
		}
	}

	if home := homedir.HomeDir(); home != "" {
		return sanitizePath(filepath.Join(home, ".kube", "config"), true)
	}

	return "", true, errors.New("unable to find kubeconfig")
}

// BuildKubeConfig builds a rest configuration from a kubeconfig on disk.
func BuildKubeConfig(kubeconfig string) (*rest.Config, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, err
	}

	setConfigQPSBurst(config)
	return config, nil
}

func setConfigQPSBurst(config *rest.Config) {
	config.Burst = APIServerBurst
	config.QPS = APIServerQPS
}
