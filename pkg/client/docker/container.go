package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/cli/opts"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// RestartUnlessStopped is the restart policy of standalone containers.
const RestartUnlessStopped = container.RestartPolicyUnlessStopped

// ErrInvalidPlatform is returned for a platform that is not os/arch[/variant].
var ErrInvalidPlatform = errors.New("invalid platform")

// RunOptions describe a container published on one host port.
type RunOptions struct {
	Name          string
	Image         string
	BindAddress   string
	HostPort      int
	ContainerPort int
	Env           []string
	Platform      string
	Labels        map[string]string
}

// RemoveContainer force-removes the container called name. A missing container is not an error.
func (e *Engine) RemoveContainer(ctx context.Context, name string) (bool, error) {
	err := e.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: true, RemoveVolumes: false})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("remove container %s: %w", name, err)
	}

	return true, nil
}

// RunContainer creates and starts a container and returns its ID.
func (e *Engine) RunContainer(ctx context.Context, runOpts RunOptions) (string, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(runOpts.ContainerPort))
	if err != nil {
		return "", fmt.Errorf("container port %d: %w", runOpts.ContainerPort, err)
	}

	platform, err := ParsePlatform(runOpts.Platform)
	if err != nil {
		return "", err
	}

	config := &container.Config{
		Image:        runOpts.Image,
		Env:          runOpts.Env,
		Labels:       runOpts.Labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}

	hostConfig := &container.HostConfig{
		RestartPolicy: container.RestartPolicy{Name: RestartUnlessStopped},
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{
				HostIP:   runOpts.BindAddress,
				HostPort: strconv.Itoa(runOpts.HostPort),
			}},
		},
	}

	created, err := e.client.ContainerCreate(ctx, config, hostConfig, nil, platform, runOpts.Name)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", runOpts.Name, err)
	}

	err = e.client.ContainerStart(ctx, created.ID, container.StartOptions{})
	if err != nil {
		return "", fmt.Errorf("start container %s: %w", runOpts.Name, err)
	}

	return created.ID, nil
}

// Logs returns the last tail lines of stdout and stderr of a container.
func (e *Engine) Logs(ctx context.Context, name string, tail int) (string, error) {
	reader, err := e.client.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return "", fmt.Errorf("logs of %s: %w", name, err)
	}

	defer func() { _ = reader.Close() }()

	var out bytes.Buffer

	_, err = stdcopy.StdCopy(&out, &out, reader)
	if err != nil {
		return "", fmt.Errorf("read logs of %s: %w", name, err)
	}

	return out.String(), nil
}

// LoadEnvFile reads KEY=VALUE lines, skipping comments and blank lines.
// A bare KEY takes its value from the current environment.
func LoadEnvFile(path string) ([]string, error) {
	env, err := opts.ParseEnvFile(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return env, nil
}

// ParsePlatform parses os/arch[/variant]. An empty string yields nil, the daemon default.
func ParsePlatform(value string) (*ocispec.Platform, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q (want os/arch[/variant])", ErrInvalidPlatform, value)
	}

	platform := &ocispec.Platform{OS: parts[0], Architecture: parts[1]}
	if len(parts) == 3 {
		platform.Variant = parts[2]
	}

	return platform, nil
}
