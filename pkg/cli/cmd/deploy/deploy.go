package deploy

import (
	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/cmd/parallel"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command group.
func NewDeployCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"deploy",
		"Deploy the project images to a Docker host",
		"Build and push the project images, then roll them out on a Docker host either "+
			"through docker compose or through the Watchtower HTTP API.",
		NewComposeCmd(runtimeContainer),
		NewWebhookCmd(runtimeContainer),
	)
}

type deployFlags struct {
	skipBuild bool
	noHealth  bool
}

func addDeployFlags(cmd *cobra.Command, flags *deployFlags) {
	cmd.Flags().StringP("tag", "t", "", "image tag (default: spec.tag)")
	cmd.Flags().BoolVar(&flags.skipBuild, "skip-build", false, "push the images already present locally")
	cmd.Flags().BoolVar(&flags.noHealth, "no-health", false, "do not poll spec.health.url after the deploy")
}

//nolint:gochecknoglobals // immutable binding
var tagBinding = helpers.Binding{Key: "spec.tag", Flag: "tag"}

// pipeline is what both deploy flows need before handing images to a runtime.
type pipeline struct {
	plans    []deployer.ImagePlan
	deployer *deployer.Deployer
	options  deployer.DeployOptions
	close    func()
}

func newPipeline(cmd *cobra.Command, injector di.Injector, spec v1alpha1.Spec, flags *deployFlags) (*pipeline, error) {
	plans, err := deployer.PlanImages(spec, nil, spec.Tag, false)
	if err != nil {
		return nil, err
	}

	engine, err := helpers.NewDockerEngine(cmd, injector)
	if err != nil {
		return nil, err
	}

	poller, err := helpers.NewHealthPoller(injector, spec.Health)
	if err != nil {
		_ = engine.Close()

		return nil, err
	}

	out := cmd.OutOrStdout()
	builder := deployer.NewBuilder(
		engine,
		parallel.NewExecutor(0),
		helpers.RegistryCredentials(spec.Registry),
		nil,
		out,
	)

	return &pipeline{
		plans:    plans,
		deployer: deployer.NewDeployer(builder, poller, out),
		options: deployer.DeployOptions{
			Build: deployer.BuildOptions{
				ProjectDir: spec.App.Directory,
				Project:    spec.App.Name,
				Platform:   spec.Platform,
			},
			SkipBuild: flags.skipBuild,
			NoHealth:  flags.noHealth,
			HealthURL: spec.Health.URL,
		},
		close: func() { _ = engine.Close() },
	}, nil
}
