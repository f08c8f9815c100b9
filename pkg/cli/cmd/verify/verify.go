package verify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/argocd"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/svc/verifier"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var only []string

	checkNames := make([]string, 0, len(v1alpha1.ValidChecks()))
	for _, check := range v1alpha1.ValidChecks() {
		checkNames = append(checkNames, string(check))
	}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every part of the deployment",
		Long: "Run the deployment checks one after another and print one line per check. " +
			"Checks without configuration are skipped. The command fails when any check fails.\n\n" +
			"Checks: " + strings.Join(checkNames, ", "),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runVerify(cmd, injector, tmr, only)
		}),
	)

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only these checks (comma separated)")

	return cmd
}

func runVerify(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, only []string) error {
	selected, err := v1alpha1.ParseChecks(only)
	if err != nil {
		return err
	}

	project, err := helpers.LoadProject(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	notify.Titlef(out, "🩺", "Verify %s...", project.Spec.App.Name)

	checks := verifier.New(out)

	err = registerChecks(checks, injector, project.Spec)
	if err != nil {
		return err
	}

	_, err = checks.Run(cmd.Context(), selected)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "deployment verified")

	return nil
}

// registerChecks registers a check for every configured part. Clients are built when
// a check runs, so an unreachable cluster fails its checks instead of the command.
func registerChecks(checks *verifier.Verifier, injector di.Injector, spec v1alpha1.Spec) error {
	kubeClients := sync.OnceValues(func() (*k8s.Clients, error) {
		return helpers.NewKubernetesClients(injector, spec.Kubernetes)
	})

	if spec.Kubernetes.Deployment != "" {
		checks.Register(v1alpha1.CheckKubernetes, func(ctx context.Context) (string, error) {
			clients, err := kubeClients()
			if err != nil {
				return "", err
			}

			return verifier.KubernetesCheck(clients.Kube, spec.Kubernetes.Namespace, spec.Kubernetes.Deployment)(ctx)
		})
	}

	if spec.ArgoCD.Application != "" {
		checks.Register(v1alpha1.CheckArgoCD, func(ctx context.Context) (string, error) {
			clients, err := kubeClients()
			if err != nil {
				return "", err
			}

			manager := argocd.NewManager(clients.Kube, clients.Dynamic, spec.ArgoCD.Namespace)

			return verifier.ArgoCDCheck(manager, spec.ArgoCD.Application)(ctx)
		})
	}

	if spec.Kong.AdminURL != "" {
		client, err := helpers.NewKongClient(injector, spec.Kong)
		if err != nil {
			return err
		}

		checks.Register(v1alpha1.CheckKong, verifier.KongCheck(client, spec.Kong))
	}

	if spec.GitHub.Repository != "" {
		factory, err := di.ResolveGitHubClientFactory(injector)
		if err != nil {
			return err
		}

		client, err := factory(spec.GitHub.Host)
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}

		checks.Register(v1alpha1.CheckGitHub, verifier.GitHubCheck(client, spec.GitHub))
	}

	if spec.Health.URL != "" {
		poller, err := helpers.NewHealthPoller(injector, spec.Health)
		if err != nil {
			return err
		}

		checks.Register(v1alpha1.CheckHealth, verifier.HealthCheck(poller, spec.Health.URL))
	}

	return nil
}
