package gateway

import (
	"fmt"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/verifier"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the gateway status command.
func NewStatusCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show Kong health and which configured objects exist",
		Long: "Read the Kong node status and look up every service and route declared in " +
			"spec.kong. Fails when any of them is missing.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(runStatus),
	)

	addAdminURLFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
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

	notify.Titlef(out, "🦍", "Gateway status...")

	report, err := verifier.InspectGateway(cmd.Context(), client, cfg)
	if err != nil {
		return fmt.Errorf("failed to read gateway status: %w", err)
	}

	notify.Infof(out, "kong %s", report.Status.Version)

	if report.Status.DatabaseReachable {
		notify.Infof(out, "database reachable")
	} else {
		notify.Warningf(out, "database not reachable")
	}

	notify.Infof(
		out,
		"%d active connection(s), %d request(s) served",
		report.Status.ActiveConnections,
		report.Status.TotalRequests,
	)

	for _, name := range report.Found {
		notify.Successf(out, "%s present", name)
	}

	for _, name := range report.Missing {
		notify.Errorf(out, "%s missing", name)
	}

	if !report.Complete() {
		return fmt.Errorf("%w: %s", verifier.ErrGatewayIncomplete, strings.Join(report.Missing, ", "))
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "gateway has every configured object")

	return nil
}
