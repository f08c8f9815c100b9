package helpers

import (
	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/io/configmanager"
	projectconfig "github.com/devantler-tech/deployctl/pkg/io/configmanager/project"
	"github.com/spf13/cobra"
)

// Binding maps a command flag onto a config key. The flag wins when the user sets it.
type Binding struct {
	Key  string
	Flag string
}

// kubeBindings connect the persistent kube flags to the project file.
//
//nolint:gochecknoglobals // immutable lookup table
var kubeBindings = []Binding{
	{Key: "spec.kubernetes.kubeconfig", Flag: KubeconfigFlagName},
	{Key: "spec.kubernetes.context", Flag: ContextFlagName},
	{Key: "spec.kubernetes.namespace", Flag: NamespaceFlagName},
}

// LoadProject loads the project file selected by --config with the kube flags and
// bindings applied on top. Warnings about the file go to the command output.
func LoadProject(cmd *cobra.Command, bindings ...Binding) (*v1alpha1.Project, error) {
	var configFile string
	if flag := cmd.Flag(ConfigFlagName); flag != nil {
		configFile = flag.Value.String()
	}

	manager := projectconfig.NewConfigManager(cmd.OutOrStdout(), configFile)

	for _, binding := range append(append([]Binding{}, kubeBindings...), bindings...) {
		flag := cmd.Flag(binding.Flag)
		if flag == nil {
			continue
		}

		err := manager.BindFlag(binding.Key, flag)
		if err != nil {
			return nil, err
		}
	}

	return manager.Load(configmanager.LoadOptions{Silent: true})
}
