package di

import (
	"net/http"

	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/client/github"
	"github.com/devantler-tech/deployctl/pkg/client/httpclient"
	"github.com/devantler-tech/deployctl/pkg/client/oci"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/utils/logging"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

// NewRuntime returns the runtime used by the root command, with the default
// implementation of every dependency. Overrides run last and replace defaults.
func NewRuntime(overrides ...Module) *Runtime {
	return New(append([]Module{
		provideTimer,
		provideLogger,
		provideHTTPClientFactory,
		provideDockerClientFactory,
		provideKubernetesClientFactory,
		providePortForwarderFactory,
		provideRegistryVerifierFactory,
		provideGitHubClientFactory,
		provideProcessRunner,
	}, overrides...)...)
}

// PortForwarderFactory opens port-forwards against the cluster of clients.
type PortForwarderFactory func(clients *k8s.Clients) k8s.PortForwarder

// RegistryVerifierFactory returns a verifier for a registry.
type RegistryVerifierFactory func(creds oci.Credentials, insecure bool) oci.Verifier

func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

func provideLogger(i Injector) error {
	do.Provide(i, func(i Injector) (*logrus.Logger, error) {
		cmdIO, err := do.Invoke[CommandIO](i)
		if err != nil {
			return logging.New(nil, false), nil //nolint:nilerr // fall back to stderr outside commands
		}

		return logging.New(cmdIO.ErrOut, cmdIO.Verbose), nil
	})

	return nil
}

func provideHTTPClientFactory(i Injector) error {
	do.Provide(i, func(i Injector) (httpclient.Factory, error) {
		logger, err := do.Invoke[*logrus.Logger](i)
		if err != nil {
			return nil, err
		}

		return httpclient.NewFactory(logger), nil
	})

	return nil
}

func provideDockerClientFactory(i Injector) error {
	do.Provide(i, func(Injector) (docker.ClientFactory, error) {
		return docker.NewAPIClient, nil
	})

	return nil
}

func provideKubernetesClientFactory(i Injector) error {
	do.Provide(i, func(Injector) (k8s.ClientFactory, error) {
		return k8s.NewClients, nil
	})

	return nil
}

func providePortForwarderFactory(i Injector) error {
	do.Provide(i, func(Injector) (PortForwarderFactory, error) {
		return func(clients *k8s.Clients) k8s.PortForwarder {
			return k8s.NewSPDYForwarder(clients.REST, clients.Kube, nil)
		}, nil
	})

	return nil
}

func provideRegistryVerifierFactory(i Injector) error {
	do.Provide(i, func(Injector) (RegistryVerifierFactory, error) {
		return func(creds oci.Credentials, insecure bool) oci.Verifier {
			return oci.NewVerifier(creds, insecure)
		}, nil
	})

	return nil
}

func provideGitHubClientFactory(i Injector) error {
	do.Provide(i, func(i Injector) (github.ClientFactory, error) {
		httpFactory, err := do.Invoke[httpclient.Factory](i)
		if err != nil {
			return nil, err
		}

		return github.NewClientFactory(func() *http.Client {
			return httpFactory(httpclient.Options{})
		}), nil
	})

	return nil
}

func provideProcessRunner(i Injector) error {
	do.Provide(i, func(i Injector) (runner.ProcessRunner, error) {
		cmdIO, err := do.Invoke[CommandIO](i)
		if err != nil {
			return runner.NewExecRunner(nil, nil), nil //nolint:nilerr // capture only outside commands
		}

		return runner.NewExecRunner(cmdIO.Out, cmdIO.ErrOut), nil
	})

	return nil
}
