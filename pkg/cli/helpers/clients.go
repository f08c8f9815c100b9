package helpers

import (
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/client/httpclient"
	"github.com/devantler-tech/deployctl/pkg/client/kong"
	"github.com/devantler-tech/deployctl/pkg/client/oci"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/svc/health"
	"github.com/spf13/cobra"
)

const (
	dockerReadyTimeout  = 30 * time.Second
	dockerReadyInterval = time.Second
)

// NewHealthPoller returns a poller for cfg that logs every failed attempt at debug level.
func NewHealthPoller(injector di.Injector, cfg v1alpha1.Health) (*health.Poller, error) {
	logger, err := di.ResolveLogger(injector)
	if err != nil {
		return nil, err
	}

	poller := health.NewPoller(cfg)
	poller.OnFailure = func(attempt, attempts int, reason error) {
		logger.Debugf("attempt %d/%d: %v", attempt, attempts, reason)
	}

	return poller, nil
}

// NewDockerEngine connects to the Docker daemon and waits until it answers.
// Build and push progress streams to the command's stderr.
func NewDockerEngine(cmd *cobra.Command, injector di.Injector) (*docker.Engine, error) {
	factory, err := di.ResolveDockerClientFactory(injector)
	if err != nil {
		return nil, err
	}

	api, err := factory()
	if err != nil {
		return nil, err
	}

	engine, err := docker.NewEngine(api, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	err = engine.WaitReady(cmd.Context(), dockerReadyTimeout, dockerReadyInterval)
	if err != nil {
		_ = engine.Close()

		return nil, err
	}

	return engine, nil
}

// RegistryCredentials returns the push credentials of the configured registry.
func RegistryCredentials(registry v1alpha1.Registry) docker.Credentials {
	return docker.Credentials{
		ServerAddress: registry.Host,
		Username:      registry.Username,
		Password:      registry.Password,
	}
}

// NewRegistryVerifier returns the verifier used after pushes.
func NewRegistryVerifier(injector di.Injector, registry v1alpha1.Registry) (oci.Verifier, error) {
	factory, err := di.ResolveRegistryVerifierFactory(injector)
	if err != nil {
		return nil, err
	}

	return factory(oci.Credentials{Username: registry.Username, Password: registry.Password}, registry.Insecure), nil
}

// NewKongClient returns an Admin API client with a retrying transport.
func NewKongClient(injector di.Injector, cfg v1alpha1.Kong) (*kong.Client, error) {
	factory, err := di.ResolveHTTPClientFactory(injector)
	if err != nil {
		return nil, err
	}

	return kong.NewClient(cfg.AdminURL, cfg.AdminToken, factory(httpclient.Options{}))
}

// NewKubernetesClients builds clients for the project's cluster.
func NewKubernetesClients(injector di.Injector, kube v1alpha1.Kubernetes) (*k8s.Clients, error) {
	factory, err := di.ResolveKubernetesClientFactory(injector)
	if err != nil {
		return nil, err
	}

	return factory(kube)
}
