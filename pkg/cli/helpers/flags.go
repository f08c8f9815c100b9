package helpers

import (
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const (
	// ConfigFlagName selects the project file.
	ConfigFlagName = "config"
	// TimingFlagName enables the timing block after success lines.
	TimingFlagName = "timing"
	// KubeconfigFlagName overrides spec.kubernetes.kubeconfig.
	KubeconfigFlagName = "kubeconfig"
	// ContextFlagName overrides spec.kubernetes.context.
	ContextFlagName = "context"
	// NamespaceFlagName overrides spec.kubernetes.namespace.
	NamespaceFlagName = "namespace"
)

// AddRootFlags registers the persistent flags every command inherits.
func AddRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String(ConfigFlagName, "", "path to the project file (default ./deployctl.yaml)")
	flags.BoolP(di.VerboseFlagName, "v", false, "enable debug logging")
	flags.Bool(TimingFlagName, false, "show per-stage timing output")
	flags.String(KubeconfigFlagName, "", "path to the kubeconfig file")
	flags.String(ContextFlagName, "", "kubeconfig context to use")
	flags.StringP(NamespaceFlagName, "n", "", "namespace of the workload")
}

// Timer returns tmr when --timing is set and nil otherwise.
func Timer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	flag := cmd.Flag(TimingFlagName)
	if flag == nil || flag.Value.String() != "true" {
		return nil
	}

	return tmr
}

// HelpRunE prints the help of a command group.
func HelpRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying %s command help: %w", cmd.Name(), err)
	}

	return nil
}

// NewGroupCmd returns a command that only groups subcommands and prints its help when run.
func NewGroupCmd(use, short, long string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		Long:         long,
		Args:         cobra.NoArgs,
		RunE:         HelpRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
