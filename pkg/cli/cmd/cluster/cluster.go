package cluster

import (
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewClusterCmd creates the cluster command group.
func NewClusterCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"cluster",
		"Manage clusters deployed to",
		"Manage the clusters workloads are deployed to, including their kubeconfig "+
			"entries and their registration with ArgoCD.",
		NewAddCmd(runtimeContainer),
	)
}
