package workload

import (
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewWorkloadCmd creates the workload command group.
func NewWorkloadCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"workload",
		"Manage the deployed workload",
		"Update the configuration of the deployed workload, follow its rollout and "+
			"synchronize the ArgoCD Application that deploys it.",
		NewApplyConfigMapCmd(runtimeContainer),
		NewStatusCmd(runtimeContainer),
		NewSyncCmd(runtimeContainer),
	)
}

// deploymentBinding connects --deployment to spec.kubernetes.deployment.
//
//nolint:gochecknoglobals // immutable binding
var deploymentBinding = helpers.Binding{Key: "spec.kubernetes.deployment", Flag: "deployment"}

func addDeploymentFlag(cmd *cobra.Command) {
	cmd.Flags().String("deployment", "", "name of the deployment (default: spec.kubernetes.deployment)")
}
