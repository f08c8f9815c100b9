package k8s

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/fsutil"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Clients bundles the clients commands use against one cluster.
type Clients struct {
	// REST is nil for clients built from fakes.
	REST    *rest.Config
	Kube    kubernetes.Interface
	Dynamic dynamic.Interface
}

// ClientFactory builds clients for the cluster selected by a project's kubernetes settings.
type ClientFactory func(kube v1alpha1.Kubernetes) (*Clients, error)

// ConfigFlags translates kubernetes settings into kubectl-style config flags. Empty
// settings fall back to the standard loading rules (KUBECONFIG, ~/.kube/config).
func ConfigFlags(kube v1alpha1.Kubernetes) (*genericclioptions.ConfigFlags, error) {
	flags := genericclioptions.NewConfigFlags(true)

	if kube.Kubeconfig != "" {
		path, err := fsutil.ExpandHomePath(kube.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("resolve kubeconfig path: %w", err)
		}

		flags.KubeConfig = &path
	}

	if kube.Context != "" {
		contextName := kube.Context
		flags.Context = &contextName
	}

	if kube.Namespace != "" {
		namespace := kube.Namespace
		flags.Namespace = &namespace
	}

	return flags, nil
}

// BuildRESTConfig returns the REST config of the cluster selected by kube.
func BuildRESTConfig(kube v1alpha1.Kubernetes) (*rest.Config, error) {
	flags, err := ConfigFlags(kube)
	if err != nil {
		return nil, err
	}

	restConfig, err := flags.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return restConfig, nil
}

// NewClients is the default ClientFactory.
func NewClients(kube v1alpha1.Kubernetes) (*Clients, error) {
	restConfig, err := BuildRESTConfig(kube)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	dyn, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Clients{REST: restConfig, Kube: clientset, Dynamic: dyn}, nil
}
