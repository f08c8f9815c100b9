package di

import (
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/client/github"
	"github.com/devantler-tech/deployctl/pkg/client/httpclient"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ResolveTimer retrieves the timer.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	return resolve[timer.Timer](injector, "timer")
}

// ResolveLogger retrieves the diagnostic logger.
func ResolveLogger(injector Injector) (*logrus.Logger, error) {
	return resolve[*logrus.Logger](injector, "logger")
}

// ResolveHTTPClientFactory retrieves the HTTP client factory.
func ResolveHTTPClientFactory(injector Injector) (httpclient.Factory, error) {
	return resolve[httpclient.Factory](injector, "http client factory")
}

// ResolveDockerClientFactory retrieves the Docker client factory.
func ResolveDockerClientFactory(injector Injector) (docker.ClientFactory, error) {
	return resolve[docker.ClientFactory](injector, "docker client factory")
}

// ResolveKubernetesClientFactory retrieves the Kubernetes client factory.
func ResolveKubernetesClientFactory(injector Injector) (k8s.ClientFactory, error) {
	return resolve[k8s.ClientFactory](injector, "kubernetes client factory")
}

// ResolvePortForwarderFactory retrieves the port-forwarder factory.
func ResolvePortForwarderFactory(injector Injector) (PortForwarderFactory, error) {
	return resolve[PortForwarderFactory](injector, "port-forwarder factory")
}

// ResolveRegistryVerifierFactory retrieves the registry verifier factory.
func ResolveRegistryVerifierFactory(injector Injector) (RegistryVerifierFactory, error) {
	return resolve[RegistryVerifierFactory](injector, "registry verifier factory")
}

// ResolveGitHubClientFactory retrieves the GitHub client factory.
func ResolveGitHubClientFactory(injector Injector) (github.ClientFactory, error) {
	return resolve[github.ClientFactory](injector, "github client factory")
}

// ResolveProcessRunner retrieves the external program runner.
func ResolveProcessRunner(injector Injector) (runner.ProcessRunner, error) {
	return resolve[runner.ProcessRunner](injector, "process runner")
}

// WithTimer decorates a handler so it receives the started timer.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		tmr.Start()

		return handler(cmd, injector, tmr)
	}
}
