package workload

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/argocd"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the workload sync command.
func NewSyncCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the ArgoCD Application and wait until it is synced",
		Long: "Ask ArgoCD to refresh spec.argocd.application and wait until it is Synced " +
			"and Healthy. Failed sync operations and unreachable sources end the wait at once.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runSync(cmd, injector, tmr, hard)
		}),
	)

	cmd.Flags().String("application", "", "ArgoCD Application (default: spec.argocd.application)")
	cmd.Flags().BoolVar(&hard, "hard", false, "request a hard refresh that also invalidates manifest caches")

	return cmd
}

func runSync(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, hard bool) error {
	project, err := helpers.LoadProject(
		cmd,
		helpers.Binding{Key: "spec.argocd.application", Flag: "application"},
	)
	if err != nil {
		return err
	}

	argo := project.Spec.ArgoCD

	err = v1alpha1.Require(v1alpha1.Field{Key: "spec.argocd.application", Value: argo.Application})
	if err != nil {
		return err
	}

	clients, err := helpers.NewKubernetesClients(injector, project.Spec.Kubernetes)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	manager := argocd.NewManager(clients.Kube, clients.Dynamic, argo.Namespace)

	notify.Titlef(out, "🐙", "Sync application...")
	notify.Activityf(out, "refreshing %s", argo.Application)

	err = manager.Refresh(cmd.Context(), argo.Application, hard)
	if err != nil {
		return err
	}

	var last string

	err = manager.WaitForSync(cmd.Context(), argo.Application, argo.SyncTimeout, func(status argocd.Status) {
		if status.String() != last {
			notify.Activityf(out, "%s", status)
		}

		last = status.String()
	})
	if err != nil {
		return fmt.Errorf("failed to sync application: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "application %s is synced and healthy", argo.Application)

	return nil
}
