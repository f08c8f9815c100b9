package cluster

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/argocd"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
	"k8s.io/client-go/tools/clientcmd"
)

const addLongDesc = `Add a cluster to the kubeconfig and register it with ArgoCD.

The context of the cluster is copied from --kubeconfig-source into the project
kubeconfig (spec.kubernetes.kubeconfig, --kubeconfig, or ~/.kube/config) under --name.
Existing entries are kept; an entry with the same name is only replaced with --force.

The cluster is then registered with ArgoCD by writing a declarative cluster secret in
the ArgoCD namespace of the cluster selected by the project kubeconfig.`

type addFlags struct {
	name          string
	source        string
	sourceContext string
	server        string
	skipArgoCD    bool
	force         bool
}

// NewAddCmd creates the cluster add command.
func NewAddCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:          "add",
		Short:        "Add a cluster and register it with ArgoCD",
		Long:         addLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runAdd(cmd, injector, tmr, flags)
		}),
	)

	cmd.Flags().StringVar(&flags.name, "name", "", "name of the context, cluster and user entries to add")
	cmd.Flags().StringVar(&flags.source, "kubeconfig-source", "", "kubeconfig of the cluster to add")
	cmd.Flags().StringVar(
		&flags.sourceContext, "source-context", "",
		"context to copy from the source kubeconfig (default: its current context)",
	)
	cmd.Flags().StringVar(
		&flags.server, "server", "",
		"API server URL ArgoCD should use (default: the server of the source cluster)",
	)
	cmd.Flags().BoolVar(&flags.skipArgoCD, "skip-argocd", false, "only merge the kubeconfig")
	cmd.Flags().BoolVar(&flags.force, "force", false, "replace existing entries with the same name")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("kubeconfig-source")

	return cmd
}

func runAdd(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, flags *addFlags) error {
	project, err := helpers.LoadProject(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	kube := project.Spec.Kubernetes

	target := kube.Kubeconfig
	if target == "" {
		target = clientcmd.RecommendedHomeFile
	}

	notify.Titlef(out, "🔗", "Add cluster...")
	notify.Activityf(out, "merging %s into %s", flags.source, target)

	merged, err := k8s.MergeContext(k8s.MergeOptions{
		SourcePath:    flags.source,
		SourceContext: flags.sourceContext,
		TargetPath:    target,
		Name:          flags.name,
		Server:        flags.server,
		Force:         flags.force,
	})
	if err != nil {
		return fmt.Errorf("failed to merge kubeconfig: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "context %s added to %s", merged.Name, target)

	if flags.skipArgoCD {
		notify.Infof(out, "skipping argocd registration")

		return nil
	}

	tmr.NewStage()

	notify.Titlef(out, "🐙", "Register cluster with ArgoCD...")

	kube.Kubeconfig = target

	clients, err := helpers.NewKubernetesClients(injector, kube)
	if err != nil {
		return err
	}

	cluster, err := argocd.ClusterFromKubeconfig(merged.Name, merged.Server, merged.Cluster, merged.AuthInfo)
	if err != nil {
		return fmt.Errorf("failed to build argocd cluster: %w", err)
	}

	notify.Activityf(out, "writing cluster secret in namespace %s", project.Spec.ArgoCD.Namespace)

	manager := argocd.NewManager(clients.Kube, clients.Dynamic, project.Spec.ArgoCD.Namespace)

	created, err := manager.RegisterCluster(cmd.Context(), cluster)
	if err != nil {
		return fmt.Errorf("failed to register cluster with argocd: %w", err)
	}

	action := "updated"
	if created {
		action = "registered"
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "cluster %s %s at %s", cluster.Name, action, cluster.Server)

	return nil
}
