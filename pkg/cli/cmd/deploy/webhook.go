package deploy

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/httpclient"
	"github.com/devantler-tech/deployctl/pkg/client/watchtower"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const webhookLongDesc = `Build and push the project images, then trigger a Watchtower update.

The Watchtower HTTP API at spec.watchtower.url is called with spec.watchtower.token.
With --only-built the update is limited to containers running the pushed
repositories (image names without tag, as Watchtower matches them). Any
response other than 2xx fails the deploy. spec.health.url is polled afterwards.`

// NewWebhookCmd creates the deploy webhook command.
func NewWebhookCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &deployFlags{}

	var onlyBuilt bool

	cmd := &cobra.Command{
		Use:          "webhook",
		Short:        "Deploy through the Watchtower HTTP API",
		Long:         webhookLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runWebhook(cmd, injector, tmr, flags, onlyBuilt)
		}),
	)

	addDeployFlags(cmd, flags)
	cmd.Flags().BoolVar(&onlyBuilt, "only-built", false, "only update containers running the pushed images")

	return cmd
}

func runWebhook(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	flags *deployFlags,
	onlyBuilt bool,
) error {
	project, err := helpers.LoadProject(cmd, tagBinding)
	if err != nil {
		return err
	}

	cfg := project.Spec.Watchtower

	err = v1alpha1.Require(
		v1alpha1.Field{Key: "spec.watchtower.url", Value: cfg.URL},
		v1alpha1.Field{Key: "spec.watchtower.token", Value: cfg.Token},
	)
	if err != nil {
		return err
	}

	httpFactory, err := di.ResolveHTTPClientFactory(injector)
	if err != nil {
		return err
	}

	updater, err := watchtower.NewClient(cfg.URL, cfg.Token, httpFactory(httpclient.Options{}))
	if err != nil {
		return err
	}

	deployment, err := newPipeline(cmd, injector, project.Spec, flags)
	if err != nil {
		return err
	}

	defer deployment.close()

	out := cmd.OutOrStdout()

	notify.Titlef(out, "🚢", "Deploy with watchtower...")

	err = deployment.deployer.Webhook(cmd.Context(), deployment.plans, updater, onlyBuilt, deployment.options)
	if err != nil {
		return fmt.Errorf("failed to deploy with watchtower: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "%s deployed", project.Spec.App.Name)

	return nil
}
