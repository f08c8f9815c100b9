package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/siderolabs/go-retry/retry"
)

// Error definitions for engine operations.
var (
	// ErrAPIClientNil is returned when apiClient is nil.
	ErrAPIClientNil = errors.New("apiClient cannot be nil")

	// ErrDaemonUnavailable is returned when the Docker daemon does not answer pings.
	ErrDaemonUnavailable = errors.New("docker daemon unavailable")
)

// APIClient is the part of the Docker Engine API deployctl uses.
type APIClient interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	ContainerCreate(
		ctx context.Context,
		config *container.Config,
		hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string,
	) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

var _ APIClient = (*client.Client)(nil)

// ClientFactory creates API clients.
type ClientFactory func() (APIClient, error)

// NewAPIClient creates a Docker client using environment configuration.
func NewAPIClient() (APIClient, error) {
	dockerClient, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return dockerClient, nil
}

// Engine wraps an APIClient with the operations deployctl performs.
type Engine struct {
	client APIClient
	// progress receives build and push output; io.Discard keeps the engine quiet.
	progress io.Writer
}

// NewEngine wraps apiClient. A nil progress writer discards build and push output.
func NewEngine(apiClient APIClient, progress io.Writer) (*Engine, error) {
	if apiClient == nil {
		return nil, ErrAPIClientNil
	}

	if progress == nil {
		progress = io.Discard
	}

	return &Engine{client: apiClient, progress: progress}, nil
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	err := e.client.Close()
	if err != nil {
		return fmt.Errorf("close docker client: %w", err)
	}

	return nil
}

// WaitReady pings the daemon until it answers or timeout passes.
func (e *Engine) WaitReady(ctx context.Context, timeout, interval time.Duration) error {
	err := retry.Constant(timeout, retry.WithUnits(interval)).RetryWithContext(
		ctx,
		func(ctx context.Context) error {
			_, pingErr := e.client.Ping(ctx)
			if pingErr != nil {
				return retry.ExpectedError(pingErr)
			}

			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDaemonUnavailable, err)
	}

	return nil
}
