package cmd

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cli/cmd/cluster"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/deploy"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/gateway"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/image"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/pipeline"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/project"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/verify"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/workload"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/cli/ui/errorhandler"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	return NewRootCmdWithRuntime(version, commit, date, di.NewRuntime())
}

// NewRootCmdWithRuntime is NewRootCmd with the dependencies of every subcommand
// supplied by runtimeContainer.
func NewRootCmdWithRuntime(version, commit, date string, runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployctl",
		Short: "Build, ship and verify one application across Docker, Kubernetes and Kong",
		Long: `deployctl drives the deployment lifecycle of one application: it builds and pushes
its images, rolls them out through Kubernetes, ArgoCD, docker compose or Watchtower,
configures the Kong gateway in front of it and verifies the result.`,
		RunE:         helpers.HelpRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	helpers.AddRootFlags(cmd)

	cmd.AddCommand(cluster.NewClusterCmd(runtimeContainer))
	cmd.AddCommand(workload.NewWorkloadCmd(runtimeContainer))
	cmd.AddCommand(image.NewImageCmd(runtimeContainer))
	cmd.AddCommand(deploy.NewDeployCmd(runtimeContainer))
	cmd.AddCommand(gateway.NewGatewayCmd(runtimeContainer))
	cmd.AddCommand(pipeline.NewPipelineCmd(runtimeContainer))
	cmd.AddCommand(project.NewProjectCmd(runtimeContainer))
	cmd.AddCommand(verify.NewVerifyCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}
