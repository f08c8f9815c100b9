// Package compose drives `docker compose` for hosts that run the app from a compose file.
//
// There is no Go library for the compose CLI in deployctl's stack, so the package wraps the
// external program through a [runner.ProcessRunner].
package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
)

// ErrComposeFileRequired is returned when no compose file is configured.
var ErrComposeFileRequired = errors.New("compose file is required")

// UpOptions configures `docker compose up`.
type UpOptions struct {
	File    string
	Project string
	// Dir is the working directory compose resolves relative paths from.
	Dir           string
	RemoveOrphans bool
	// NoPull skips `--pull always`.
	NoPull bool
}

// Client runs compose commands.
type Client struct {
	runner runner.ProcessRunner
}

// NewClient returns a Client executing through procRunner.
func NewClient(procRunner runner.ProcessRunner) *Client {
	return &Client{runner: procRunner}
}

// UpArgs returns the docker arguments for opts.
func UpArgs(opts UpOptions) []string {
	args := []string{"compose", "-f", opts.File}
	if opts.Project != "" {
		args = append(args, "-p", opts.Project)
	}

	args = append(args, "up", "-d")
	if !opts.NoPull {
		args = append(args, "--pull", "always")
	}

	if opts.RemoveOrphans {
		args = append(args, "--remove-orphans")
	}

	return args
}

// Up starts the services in detached mode, pulling fresh images.
func (c *Client) Up(ctx context.Context, opts UpOptions) error {
	if opts.File == "" {
		return ErrComposeFileRequired
	}

	_, err := c.runner.Run(ctx, runner.Process{Name: "docker", Args: UpArgs(opts), Dir: opts.Dir})
	if err != nil {
		return fmt.Errorf("compose up: %w", err)
	}

	return nil
}
