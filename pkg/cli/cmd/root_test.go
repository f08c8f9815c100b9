package cmd_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/cli/cmd"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRootTest = errors.New("boom")

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")

	assert.Equal(t, "1.2.3 (Built on 2025-08-17 from Git SHA abc123)", root.Version)
}

func TestExecuteShowsHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetArgs([]string{})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestCommandGroupsShowHelp(t *testing.T) {
	t.Parallel()

	groups := []string{"cluster", "workload", "image", "deploy", "gateway", "pipeline", "project"}

	for _, group := range groups {
		t.Run(group, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			root := cmd.NewRootCmd("", "", "")
			root.SetOut(&out)
			root.SetArgs([]string{group})

			require.NoError(t, root.Execute())
			snaps.MatchSnapshot(t, out.String())
		})
	}
}

func TestTimingFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantTiming bool
	}{
		{name: "off by default", args: []string{"timing-probe"}},
		{name: "enabled by --timing", args: []string{"--timing", "timing-probe"}, wantTiming: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			root := cmd.NewRootCmd("test", "test", "test")
			root.SetOut(&out)
			root.AddCommand(&cobra.Command{
				Use: "timing-probe",
				RunE: func(cmd *cobra.Command, _ []string) error {
					tmr := timer.New()
					tmr.Start()

					notify.SuccessWithTimerf(cmd.OutOrStdout(), helpers.Timer(cmd, tmr), "probe complete")

					return nil
				},
			})
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			assert.Equal(t, tt.wantTiming, strings.Contains(out.String(), "⏲ current:"))
		})
	}
}

func TestExecuteWrapper(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		root := cmd.NewRootCmd("test", "test", "test")
		root.AddCommand(&cobra.Command{Use: "ok", RunE: func(*cobra.Command, []string) error { return nil }})
		root.SetArgs([]string{"ok"})

		require.NoError(t, cmd.Execute(root))
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		root := cmd.NewRootCmd("test", "test", "test")
		root.AddCommand(&cobra.Command{Use: "fail", RunE: func(*cobra.Command, []string) error { return errRootTest }})
		root.SetArgs([]string{"fail"})

		err := cmd.Execute(root)
		require.ErrorIs(t, err, errRootTest)
	})
}

func TestExecuteWithNonexistentCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"nonexistent"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "nonexistent"`)
}
