package pipeline

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	svcpipeline "github.com/devantler-tech/deployctl/pkg/svc/pipeline"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

type fixFlags struct {
	keepGoing bool
	dryRun    bool
	scaffold  bool
}

// NewFixCmd creates the pipeline fix command.
func NewFixCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var flags fixFlags

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Run formatters and pin settings into the CI workflows",
		Long: "Run every command in spec.pipeline.formatters in the project directory, then " +
			"rewrite the workflow files in spec.pipeline.workflowDir: merge workflowEnv into the " +
			"top-level env, mark allowFailure jobs with continue-on-error and give jobs without " +
			"runs-on the configured runner. Comments and key order are kept.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runFix(cmd, injector, tmr, flags)
		}),
	)

	cmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "run every formatter even after one fails")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list the workflow files that would change without writing them")
	cmd.Flags().BoolVar(&flags.scaffold, "scaffold", false, "also scaffold a placeholder test")

	return cmd
}

func runFix(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, flags fixFlags) error {
	project, err := helpers.LoadProject(cmd)
	if err != nil {
		return err
	}

	cfg := project.Spec.Pipeline
	out := cmd.OutOrStdout()

	if len(cfg.Formatters) > 0 {
		procRunner, err := di.ResolveProcessRunner(injector)
		if err != nil {
			return err
		}

		notify.Titlef(out, "🧹", "Run formatters...")

		err = svcpipeline.RunFormatters(
			cmd.Context(), procRunner, project.Spec.App.Directory, cfg.Formatters, flags.keepGoing, out,
		)
		if err != nil {
			return err
		}

		notify.Successf(out, "%d formatter(s) passed", len(cfg.Formatters))
		tmr.NewStage()
	}

	rules := svcpipeline.Rules{Env: cfg.WorkflowEnv, AllowFailure: cfg.AllowFailure, RunsOn: cfg.RunsOn}
	workflowDir := inProject(project.Spec.App, cfg.WorkflowDir)

	notify.Titlef(out, "🔧", "Fix workflows...")

	if rules.Empty() {
		notify.Infof(out, "no workflow rules configured")
	} else {
		changed, err := svcpipeline.FixWorkflows(workflowDir, rules, flags.dryRun)
		if err != nil {
			return fmt.Errorf("failed to fix workflows: %w", err)
		}

		reportChanges(cmd, changed, flags.dryRun, workflowDir)
	}

	if flags.scaffold {
		tmr.NewStage()
		notify.Titlef(out, "🧪", "Scaffold tests...")

		err = scaffold(project, out)
		if err != nil {
			return err
		}
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "pipeline fixed")

	return nil
}

func reportChanges(cmd *cobra.Command, changed []string, dryRun bool, workflowDir string) {
	out := cmd.OutOrStdout()

	if len(changed) == 0 {
		notify.Infof(out, "workflows in %s are up to date", workflowDir)

		return
	}

	for _, path := range changed {
		if dryRun {
			notify.Infof(out, "would update %s", path)
		} else {
			notify.Generatef(out, "%s", path)
		}
	}
}
