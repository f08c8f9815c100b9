package project

import (
	"fmt"
	"text/tabwriter"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/sessions"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/spf13/cobra"
)

// NewListCmd creates the project list command.
func NewListCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List the registered sessions",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, func(cmd *cobra.Command, _ di.Injector) error {
		project, err := helpers.LoadProject(cmd)
		if err != nil {
			return err
		}

		store, err := sessions.NewStore(project.Spec.Sessions.RegistryFile)
		if err != nil {
			return err
		}

		registry, err := store.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(registry.Sessions) == 0 {
			notify.Infof(out, "no sessions registered in %s", store.Path())

			return nil
		}

		writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		_, _ = fmt.Fprintln(writer, "NAME\tSTATUS\tAUTO START\tTAGS\tPATH")

		for _, session := range registry.Sessions {
			_, _ = fmt.Fprintf(
				writer, "%s\t%s\t%t\t%s\t%s\n",
				session.Name, session.Status, session.AutoStart, session.Tags, session.Path,
			)
		}

		err = writer.Flush()
		if err != nil {
			return fmt.Errorf("failed to print sessions: %w", err)
		}

		return nil
	})

	return cmd
}
