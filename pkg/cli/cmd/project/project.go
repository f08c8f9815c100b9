package project

import (
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewProjectCmd creates the project command group.
func NewProjectCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"project",
		"Manage the local session registry",
		"Register the project directories under spec.sessions.roots in the session "+
			"registry and list what is registered.",
		NewRegisterCmd(runtimeContainer),
		NewListCmd(runtimeContainer),
	)
}
