package project

import (
	"fmt"
	"slices"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/sessions"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

type registerFlags struct {
	dryRun bool
	tags   []string
}

// NewRegisterCmd creates the project register command.
func NewRegisterCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var flags registerFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register every project found under the session roots",
		Long: "Scan the direct subdirectories of spec.sessions.roots and add a session for " +
			"each project that is not registered yet. Hidden directories are ignored. " +
			"Concurrent runs wait for each other on a lock next to the registry file.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, _ di.Injector, tmr timer.Timer) error {
			return runRegister(cmd, tmr, flags)
		}),
	)

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show what would be registered without writing the registry")
	cmd.Flags().Bool("auto-start", false, "mark new sessions for auto start (default: spec.sessions.autoStart)")
	cmd.Flags().StringSliceVar(&flags.tags, "tag", nil, "extra tag added to every new session (repeatable)")

	return cmd
}

func runRegister(cmd *cobra.Command, tmr timer.Timer, flags registerFlags) error {
	project, err := helpers.LoadProject(
		cmd,
		helpers.Binding{Key: "spec.sessions.autoStart", Flag: "auto-start"},
	)
	if err != nil {
		return err
	}

	cfg := project.Spec.Sessions
	out := cmd.OutOrStdout()

	notify.Titlef(out, "🔎", "Scan projects...")

	candidates, missing, err := sessions.ScanRoots(cfg.Roots)
	if err != nil {
		return fmt.Errorf("failed to scan project roots: %w", err)
	}

	for _, root := range missing {
		notify.Warningf(out, "root %s does not exist", root)
	}

	notify.Infof(out, "%d project(s) found", len(candidates))

	store, err := sessions.NewStore(cfg.RegistryFile)
	if err != nil {
		return err
	}

	tmr.NewStage()
	notify.Titlef(out, "📇", "Register sessions...")

	result, err := sessions.Register(cmd.Context(), store, candidates, sessions.RegisterOptions{
		SocketDir: cfg.SocketDir,
		Tags:      append(slices.Clone(cfg.Tags), flags.tags...),
		AutoStart: cfg.AutoStart,
		DryRun:    flags.dryRun,
	})
	if err != nil {
		return fmt.Errorf("failed to register sessions: %w", err)
	}

	verb := "registered"
	if flags.dryRun {
		verb = "would register"
	}

	for _, name := range result.Added {
		notify.Activityf(out, "%s %s", verb, name)
	}

	for _, name := range result.Skipped {
		notify.Infof(out, "%s already registered", name)
	}

	notify.SuccessWithTimerf(
		out,
		helpers.Timer(cmd, tmr),
		"%d added, %d skipped (%s)",
		len(result.Added), len(result.Skipped), store.Path(),
	)

	return nil
}
