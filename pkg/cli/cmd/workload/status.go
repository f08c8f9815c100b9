package workload

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/k8s/readiness"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the workload status command.
func NewStatusCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show the rollout status of the deployment",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runStatus(cmd, injector, tmr, wait)
		}),
	)

	addDeploymentFlag(cmd)
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the rollout completes")

	return cmd
}

func runStatus(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, wait bool) error {
	project, err := helpers.LoadProject(cmd, deploymentBinding)
	if err != nil {
		return err
	}

	kube := project.Spec.Kubernetes

	err = v1alpha1.Require(v1alpha1.Field{Key: "spec.kubernetes.deployment", Value: kube.Deployment})
	if err != nil {
		return err
	}

	clients, err := helpers.NewKubernetesClients(injector, kube)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	notify.Titlef(out, "🔎", "Rollout status...")

	if wait {
		err = readiness.WaitForDeploymentRollout(
			cmd.Context(), clients.Kube, kube.Namespace, kube.Deployment,
			readiness.DefaultPollInterval, kube.RolloutTimeout,
			func(message string) { notify.Activityf(out, "%s", message) },
		)
		if err != nil {
			return fmt.Errorf("rollout of %s/%s: %w", kube.Namespace, kube.Deployment, err)
		}

		notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "deployment %s rolled out", kube.Deployment)

		return nil
	}

	status, err := readiness.DeploymentRolloutStatus(cmd.Context(), clients.Kube, kube.Namespace, kube.Deployment)
	if err != nil {
		return err
	}

	if status.Done {
		notify.Successf(out, "%s", status.Message)
	} else {
		notify.Infof(out, "%s", status.Message)
	}

	return nil
}
