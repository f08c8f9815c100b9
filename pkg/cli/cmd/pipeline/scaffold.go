package pipeline

import (
	"io"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	svcpipeline "github.com/devantler-tech/deployctl/pkg/svc/pipeline"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewScaffoldCmd creates the pipeline scaffold command.
func NewScaffoldCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Write a placeholder test when the project has none",
		Long: "Look for a file matching spec.pipeline.testGlob below spec.pipeline.testDir and " +
			"write spec.pipeline.placeholderPath when nothing matches, so test jobs have " +
			"something to collect. Existing files are never overwritten.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, _ di.Injector, tmr timer.Timer) error {
			project, err := helpers.LoadProject(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			notify.Titlef(out, "🧪", "Scaffold tests...")

			err = scaffold(project, out)
			if err != nil {
				return err
			}

			notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "tests scaffolded")

			return nil
		}),
	)

	return cmd
}

func scaffold(project *v1alpha1.Project, out io.Writer) error {
	opts := scaffoldOptions(project)

	written, err := svcpipeline.Scaffold(opts)
	if err != nil {
		return err
	}

	if written {
		notify.Generatef(out, "%s", opts.PlaceholderPath)
	} else {
		notify.Infof(out, "tests already present in %s", opts.TestDir)
	}

	return nil
}
