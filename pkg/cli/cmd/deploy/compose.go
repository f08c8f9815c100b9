package deploy

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/compose"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const composeLongDesc = `Build and push the project images, then start them with docker compose.

The compose file (--file or spec.watchtower.composeFile) is started with
"docker compose up -d --pull always" in spec.app.directory, so the pushed images are
pulled. spec.health.url is polled afterwards.`

// NewComposeCmd creates the deploy compose command.
func NewComposeCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &deployFlags{}

	var removeOrphans bool

	cmd := &cobra.Command{
		Use:          "compose",
		Short:        "Deploy with docker compose",
		Long:         composeLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runCompose(cmd, injector, tmr, flags, removeOrphans)
		}),
	)

	addDeployFlags(cmd, flags)
	cmd.Flags().StringP("file", "f", "", "compose file (default: spec.watchtower.composeFile)")
	cmd.Flags().BoolVar(&removeOrphans, "remove-orphans", false, "remove containers not defined in the compose file")

	return cmd
}

func runCompose(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	flags *deployFlags,
	removeOrphans bool,
) error {
	project, err := helpers.LoadProject(
		cmd,
		tagBinding,
		helpers.Binding{Key: "spec.watchtower.composeFile", Flag: "file"},
	)
	if err != nil {
		return err
	}

	procRunner, err := di.ResolveProcessRunner(injector)
	if err != nil {
		return err
	}

	deployment, err := newPipeline(cmd, injector, project.Spec, flags)
	if err != nil {
		return err
	}

	defer deployment.close()

	out := cmd.OutOrStdout()
	watchtower := project.Spec.Watchtower

	notify.Titlef(out, "🚢", "Deploy with docker compose...")

	err = deployment.deployer.Compose(
		cmd.Context(),
		deployment.plans,
		compose.NewClient(procRunner),
		compose.UpOptions{
			File:          watchtower.ComposeFile,
			Project:       watchtower.ComposeProject,
			Dir:           project.Spec.App.Directory,
			RemoveOrphans: removeOrphans,
		},
		deployment.options,
	)
	if err != nil {
		return fmt.Errorf("failed to deploy with compose: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "%s deployed", project.Spec.App.Name)

	return nil
}
