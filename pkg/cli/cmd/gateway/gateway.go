package gateway

import (
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewGatewayCmd creates the gateway command group.
func NewGatewayCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"gateway",
		"Manage the Kong gateway in front of the application",
		"Apply the services, routes and plugins declared under spec.kong through the "+
			"Kong Admin API and report which of them exist.",
		NewSetupCmd(runtimeContainer),
		NewStatusCmd(runtimeContainer),
	)
}

//nolint:gochecknoglobals // immutable binding
var adminURLBinding = helpers.Binding{Key: "spec.kong.adminURL", Flag: "admin-url"}

func addAdminURLFlag(cmd *cobra.Command) {
	cmd.Flags().String("admin-url", "", "Kong Admin API URL (default: spec.kong.adminURL)")
}
