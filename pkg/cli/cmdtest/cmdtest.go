// Package cmdtest runs deployctl commands in tests against a temporary project file.
package cmdtest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/spf13/cobra"
)

// WriteProject writes body as deployctl.yaml into a temporary directory and returns its path.
func WriteProject(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deployctl.yaml")

	err := os.WriteFile(path, []byte(body), 0o600)
	if err != nil {
		t.Fatalf("write project file: %v", err)
	}

	return path
}

// Run executes cmd below a root carrying the persistent deployctl flags, so args start
// after the name of cmd. The project file at configPath is passed with --config when
// it is not empty.
func Run(t *testing.T, cmd *cobra.Command, configPath string, args ...string) (runner.CommandResult, error) {
	t.Helper()

	root := &cobra.Command{Use: "deployctl", SilenceUsage: true}
	helpers.AddRootFlags(root)
	root.AddCommand(cmd)

	fullArgs := append([]string{cmd.Name()}, args...)

	if configPath != "" {
		fullArgs = append(fullArgs, "--"+helpers.ConfigFlagName, configPath)
	}

	return runner.NewCobraCommandRunner(io.Discard, io.Discard).Run(context.Background(), root, fullArgs)
}
