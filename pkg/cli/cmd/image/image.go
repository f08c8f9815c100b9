package image

import (
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewImageCmd creates the image command group.
func NewImageCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"image",
		"Build, push and run container images",
		"Build the images of the project through the Docker Engine API, push them to the "+
			"configured registry, or run the standalone image as a local container.",
		NewBuildCmd(runtimeContainer),
		NewRunCmd(runtimeContainer),
	)
}
