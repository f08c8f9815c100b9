package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/devantler-tech/deployctl/pkg/svc/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessRunner struct {
	failing map[string]bool
	ran     []runner.Process
}

func (f *fakeProcessRunner) Run(_ context.Context, process runner.Process) (runner.CommandResult, error) {
	f.ran = append(f.ran, process)

	if f.failing[process.Name] {
		return runner.CommandResult{}, fmt.Errorf("%w: %s", runner.ErrProcessFailed, process)
	}

	return runner.CommandResult{}, nil
}

func commands() []v1alpha1.Command {
	return []v1alpha1.Command{
		{Name: "gofmt", Args: []string{"-l", "-w", "."}},
		{Name: "ruff", Args: []string{"check", "--fix", "."}},
		{Name: "prettier", Args: []string{"--write", "."}},
	}
}

func TestRunFormatters_RunsInOrder(t *testing.T) {
	t.Parallel()

	procRunner := &fakeProcessRunner{}

	var out bytes.Buffer

	err := pipeline.RunFormatters(context.Background(), procRunner, "/src/shop", commands(), false, &out)
	require.NoError(t, err)

	require.Len(t, procRunner.ran, 3)
	assert.Equal(t, "/src/shop", procRunner.ran[0].Dir)
	assert.Equal(t, "ruff check --fix .", procRunner.ran[1].String())
	assert.Contains(t, out.String(), "► running gofmt -l -w .")
}

func TestRunFormatters_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	procRunner := &fakeProcessRunner{failing: map[string]bool{"ruff": true}}

	err := pipeline.RunFormatters(context.Background(), procRunner, ".", commands(), false, nil)

	require.ErrorIs(t, err, pipeline.ErrFormattersFailed)
	require.ErrorIs(t, err, runner.ErrProcessFailed)
	assert.Len(t, procRunner.ran, 2)
}

func TestRunFormatters_KeepGoingCollectsFailures(t *testing.T) {
	t.Parallel()

	procRunner := &fakeProcessRunner{failing: map[string]bool{"gofmt": true, "prettier": true}}

	var out bytes.Buffer

	err := pipeline.RunFormatters(context.Background(), procRunner, ".", commands(), true, &out)

	require.ErrorIs(t, err, pipeline.ErrFormattersFailed)
	assert.Len(t, procRunner.ran, 3)
	assert.Contains(t, err.Error(), "gofmt -l -w .; prettier --write .")
	assert.False(t, errors.Is(err, runner.ErrProcessFailed))
	assert.Contains(t, out.String(), "⚠ prettier --write . failed")
}
