package image

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const runLongDesc = `Build the standalone image and run it as a local container.

The image named by spec.standalone.image (or the only configured image) is built, the
container spec.standalone.containerName is replaced, and the new container publishes
spec.standalone.hostPort on the bind address. Variables from spec.standalone.envFile
are passed to the container. The container restarts unless stopped.

The health path is polled on the published port afterwards. When the container does
not become healthy its last log lines are printed.`

type runFlags struct {
	skipBuild bool
	noHealth  bool
}

// NewRunCmd creates the image run command.
func NewRunCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Build and run the standalone container",
		Long:         runLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runRun(cmd, injector, tmr, flags)
		}),
	)

	cmd.Flags().StringP("tag", "t", "", "image tag (default: spec.tag)")
	cmd.Flags().String("platform", "", "target platform such as linux/amd64 (default: spec.platform)")
	cmd.Flags().String("bind", "", "host address to publish on (default: spec.standalone.bindAddress)")
	cmd.Flags().BoolVar(&flags.skipBuild, "skip-build", false, "run the image already present locally")
	cmd.Flags().BoolVar(&flags.noHealth, "no-health", false, "do not poll the health endpoint")

	return cmd
}

func runRun(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, flags *runFlags) error {
	project, err := helpers.LoadProject(
		cmd,
		tagBinding,
		platformBinding,
		helpers.Binding{Key: "spec.standalone.bindAddress", Flag: "bind"},
	)
	if err != nil {
		return err
	}

	spec := project.Spec

	imageName := standaloneImage(spec)

	err = v1alpha1.Require(
		v1alpha1.Field{Key: "spec.standalone.image", Value: imageName},
		v1alpha1.Field{Key: "spec.standalone.containerName", Value: spec.Standalone.ContainerName},
	)
	if err != nil {
		return err
	}

	plans, err := deployer.PlanImages(spec, []string{imageName}, spec.Tag, false)
	if err != nil {
		return err
	}

	engine, err := helpers.NewDockerEngine(cmd, injector)
	if err != nil {
		return err
	}

	defer func() { _ = engine.Close() }()

	out := cmd.OutOrStdout()

	if !flags.skipBuild {
		notify.Titlef(out, "🐳", "Build image...")

		builder := deployer.NewBuilder(engine, nil, helpers.RegistryCredentials(spec.Registry), nil, out)

		err = builder.Build(cmd.Context(), plans, buildOptions(spec))
		if err != nil {
			return err
		}

		notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "image %s built", plans[0].Primary())

		tmr.NewStage()
	}

	poller, err := helpers.NewHealthPoller(injector, spec.Health)
	if err != nil {
		return err
	}

	notify.Titlef(out, "🚀", "Run container...")

	err = deployer.RunStandalone(cmd.Context(), engine, poller, deployer.RunOptions{
		Image:    plans[0].Primary(),
		Config:   spec.Standalone,
		Project:  spec.App.Name,
		Platform: spec.Platform,
		NoHealth: flags.noHealth,
	}, out)
	if err != nil {
		return fmt.Errorf("failed to run standalone container: %w", err)
	}

	notify.SuccessWithTimerf(
		out, helpers.Timer(cmd, tmr), "container %s running from %s",
		spec.Standalone.ContainerName, plans[0].Primary(),
	)

	return nil
}

// standaloneImage is spec.standalone.image, or the only image when exactly one is configured.
func standaloneImage(spec v1alpha1.Spec) string {
	if spec.Standalone.Image != "" {
		return spec.Standalone.Image
	}

	if len(spec.Images) == 1 {
		return spec.Images[0].Name
	}

	return ""
}
