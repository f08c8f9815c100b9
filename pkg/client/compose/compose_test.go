package compose_test

import (
	"context"
	"errors"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/client/compose"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExit = errors.New("exit status 1")

type recordingRunner struct {
	processes []runner.Process
	err       error
}

func (r *recordingRunner) Run(_ context.Context, process runner.Process) (runner.CommandResult, error) {
	r.processes = append(r.processes, process)

	return runner.CommandResult{}, r.err
}

func TestUpArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts compose.UpOptions
		want []string
	}{
		{
			name: "defaults",
			opts: compose.UpOptions{File: "docker-compose.yml"},
			want: []string{"compose", "-f", "docker-compose.yml", "up", "-d", "--pull", "always"},
		},
		{
			name: "project and orphans",
			opts: compose.UpOptions{File: "prod.yml", Project: "shop", RemoveOrphans: true},
			want: []string{
				"compose", "-f", "prod.yml", "-p", "shop", "up", "-d", "--pull", "always", "--remove-orphans",
			},
		},
		{
			name: "no pull",
			opts: compose.UpOptions{File: "c.yml", NoPull: true},
			want: []string{"compose", "-f", "c.yml", "up", "-d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, compose.UpArgs(tt.opts))
		})
	}
}

func TestClient_Up(t *testing.T) {
	t.Parallel()

	rec := &recordingRunner{}

	err := compose.NewClient(rec).Up(context.Background(), compose.UpOptions{File: "docker-compose.yml", Dir: "/srv/shop"})

	require.NoError(t, err)
	require.Len(t, rec.processes, 1)
	assert.Equal(t, "docker", rec.processes[0].Name)
	assert.Equal(t, "/srv/shop", rec.processes[0].Dir)
}

func TestClient_UpErrors(t *testing.T) {
	t.Parallel()

	err := compose.NewClient(&recordingRunner{}).Up(context.Background(), compose.UpOptions{})
	require.ErrorIs(t, err, compose.ErrComposeFileRequired)

	err = compose.NewClient(&recordingRunner{err: errExit}).Up(context.Background(), compose.UpOptions{File: "c.yml"})
	require.ErrorIs(t, err, errExit)
	assert.Contains(t, err.Error(), "compose up")
}
