package helpers_test

import (
	"bytes"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "deployctl"}
	helpers.AddRootFlags(root)

	return root
}

func TestAddRootFlags(t *testing.T) {
	t.Parallel()

	root := newRoot()

	for _, name := range []string{
		helpers.ConfigFlagName,
		"verbose",
		helpers.TimingFlagName,
		helpers.KubeconfigFlagName,
		helpers.ContextFlagName,
		helpers.NamespaceFlagName,
	} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}

	assert.Equal(t, "n", root.PersistentFlags().Lookup(helpers.NamespaceFlagName).Shorthand)
}

func TestTimer(t *testing.T) {
	t.Parallel()

	tmr := timer.New()

	root := newRoot()
	assert.Nil(t, helpers.Timer(root, tmr))

	require.NoError(t, root.PersistentFlags().Set(helpers.TimingFlagName, "true"))
	assert.Equal(t, tmr, helpers.Timer(root, tmr))
}

func TestNewGroupCmd_PrintsHelp(t *testing.T) {
	t.Parallel()

	child := &cobra.Command{Use: "add", Short: "Add a cluster", Run: func(*cobra.Command, []string) {}}
	group := helpers.NewGroupCmd("cluster", "Manage clusters", "Manage clusters known to ArgoCD.", child)

	var out bytes.Buffer

	group.SetOut(&out)
	group.SetArgs([]string{})

	require.NoError(t, group.Execute())
	assert.Contains(t, out.String(), "Manage clusters known to ArgoCD.")
	assert.Contains(t, out.String(), "add")
}
