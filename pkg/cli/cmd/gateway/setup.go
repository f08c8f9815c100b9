package gateway

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/kong"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewSetupCmd creates the gateway setup command.
func NewSetupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Apply the configured Kong services, routes and plugins",
		Long: "Write every service and route in spec.kong with PUT by name, then create or " +
			"update their plugins. Re-running converges on the same state. Objects written " +
			"before a failure are left in place.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(runSetup),
	)

	addAdminURLFlag(cmd)

	return cmd
}

func runSetup(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
	project, err := helpers.LoadProject(cmd, adminURLBinding)
	if err != nil {
		return err
	}

	cfg := project.Spec.Kong

	err = v1alpha1.Require(v1alpha1.Field{Key: "spec.kong.adminURL", Value: cfg.AdminURL})
	if err != nil {
		return err
	}

	client, err := helpers.NewKongClient(injector, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	notify.Titlef(out, "🦍", "Check gateway...")

	status, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("kong admin API is not reachable: %w", err)
	}

	notify.Successf(out, "admin API reachable (kong %s)", status.Version)

	tmr.NewStage()
	notify.Titlef(out, "🛣️", "Apply gateway configuration...")

	applied := 0

	err = client.Apply(cmd.Context(), cfg, func(event kong.Event) {
		applied++

		notify.Activityf(out, "%s", describe(event))
	})
	if err != nil {
		return fmt.Errorf("failed to apply gateway configuration: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "%d gateway object(s) applied", applied)

	return nil
}

func describe(event kong.Event) string {
	switch event.Kind {
	case "route":
		return fmt.Sprintf("route %s %s on service %s", event.Name, event.Action, event.Scope)
	case "plugin":
		if event.Scope == "global" {
			return fmt.Sprintf("global plugin %s %s", event.Name, event.Action)
		}

		return fmt.Sprintf("plugin %s %s on %s", event.Name, event.Action, event.Scope)
	default:
		return fmt.Sprintf("%s %s %s", event.Kind, event.Name, event.Action)
	}
}
