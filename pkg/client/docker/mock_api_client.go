package docker

import (
	"context"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of APIClient for testing.
// Streams (build output, push output, logs) are returned as strings.
type MockAPIClient struct {
	mock.Mock
}

// NewMockAPIClient creates a new MockAPIClient instance.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// ImageBuild mocks an image build. The build context is drained before the call is recorded.
func (m *MockAPIClient) ImageBuild(
	ctx context.Context,
	buildContext io.Reader,
	options build.ImageBuildOptions,
) (build.ImageBuildResponse, error) {
	_, _ = io.Copy(io.Discard, buildContext)

	args := m.Called(ctx, options)

	return build.ImageBuildResponse{Body: stringStream(args.String(0))}, args.Error(1) //nolint:wrapcheck // Mock function
}

// ImageTag mocks tagging an image.
func (m *MockAPIClient) ImageTag(ctx context.Context, source, target string) error {
	args := m.Called(ctx, source, target)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ImagePush mocks pushing an image.
func (m *MockAPIClient) ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, ref, options)

	return stringStream(args.String(0)), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ContainerCreate mocks creating a container.
func (m *MockAPIClient) ContainerCreate(
	ctx context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	_ *network.NetworkingConfig,
	platform *ocispec.Platform,
	containerName string,
) (container.CreateResponse, error) {
	args := m.Called(ctx, config, hostConfig, platform, containerName)

	response, ok := args.Get(0).(container.CreateResponse)
	if !ok {
		return container.CreateResponse{}, args.Error(1) //nolint:wrapcheck // Mock function
	}

	return response, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ContainerStart mocks starting a container.
func (m *MockAPIClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	args := m.Called(ctx, containerID, options)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ContainerRemove mocks removing a container.
func (m *MockAPIClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	args := m.Called(ctx, containerID, options)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ContainerLogs mocks reading container logs.
func (m *MockAPIClient) ContainerLogs(
	ctx context.Context,
	containerID string,
	options container.LogsOptions,
) (io.ReadCloser, error) {
	args := m.Called(ctx, containerID, options)

	return stringStream(args.String(0)), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Ping mocks pinging the daemon.
func (m *MockAPIClient) Ping(ctx context.Context) (types.Ping, error) {
	args := m.Called(ctx)

	return types.Ping{APIVersion: args.String(0)}, args.Error(1) //nolint:wrapcheck // Mock function
}

// Close mocks closing the client.
func (m *MockAPIClient) Close() error {
	args := m.Called()

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

func stringStream(content string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(content))
}
