package workload

import (
	"fmt"
	"os"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/rollout"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const applyConfigMapLongDesc = `Apply a ConfigMap and restart the deployment that reads it.

The manifest (--file or spec.kubernetes.configMapFile) is created or updated in the
cluster. The deployment is then restarted, its rollout is followed until it completes
or spec.kubernetes.rolloutTimeout passes, and a running pod is health checked through
a port-forward to spec.kubernetes.healthPort.`

type applyConfigMapFlags struct {
	noRestart bool
	noHealth  bool
}

// NewApplyConfigMapCmd creates the workload apply-configmap command.
func NewApplyConfigMapCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &applyConfigMapFlags{}

	cmd := &cobra.Command{
		Use:          "apply-configmap",
		Short:        "Apply a ConfigMap and roll the deployment",
		Long:         applyConfigMapLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runApplyConfigMap(cmd, injector, tmr, flags)
		}),
	)

	cmd.Flags().StringP("file", "f", "", "ConfigMap manifest to apply (default: spec.kubernetes.configMapFile)")
	addDeploymentFlag(cmd)
	cmd.Flags().BoolVar(&flags.noRestart, "no-restart", false, "only apply the ConfigMap")
	cmd.Flags().BoolVar(&flags.noHealth, "no-health", false, "skip the health check after the rollout")

	return cmd
}

func runApplyConfigMap(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	flags *applyConfigMapFlags,
) error {
	project, err := helpers.LoadProject(
		cmd,
		helpers.Binding{Key: "spec.kubernetes.configMapFile", Flag: "file"},
		deploymentBinding,
	)
	if err != nil {
		return err
	}

	kube := project.Spec.Kubernetes

	required := []v1alpha1.Field{{Key: "spec.kubernetes.configMapFile", Value: kube.ConfigMapFile}}
	if !flags.noRestart {
		required = append(required, v1alpha1.Field{Key: "spec.kubernetes.deployment", Value: kube.Deployment})
	}

	err = v1alpha1.Require(required...)
	if err != nil {
		return err
	}

	manifest, err := os.ReadFile(kube.ConfigMapFile)
	if err != nil {
		return fmt.Errorf("failed to read configmap manifest: %w", err)
	}

	clients, err := helpers.NewKubernetesClients(injector, kube)
	if err != nil {
		return err
	}

	forwarderFactory, err := di.ResolvePortForwarderFactory(injector)
	if err != nil {
		return err
	}

	poller, err := helpers.NewHealthPoller(injector, project.Spec.Health)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	notify.Titlef(out, "📝", "Apply configmap...")

	updater := rollout.NewUpdater(clients.Kube, forwarderFactory(clients), poller, out)

	err = updater.Apply(cmd.Context(), manifest, rollout.Options{
		Namespace:  kube.Namespace,
		Deployment: kube.Deployment,
		HealthPort: kube.HealthPort,
		HealthPath: kube.HealthPath,
		Timeout:    kube.RolloutTimeout,
		NoRestart:  flags.noRestart,
		NoHealth:   flags.noHealth,
	})
	if err != nil {
		return fmt.Errorf("failed to apply configmap: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "configmap applied")

	return nil
}
