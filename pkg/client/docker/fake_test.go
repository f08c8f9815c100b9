package docker_test

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

var errPingFailed = errors.New("Cannot connect to the Docker daemon")

type fakeAPIClient struct {
	mu sync.Mutex

	buildStream  string
	buildOptions build.ImageBuildOptions
	contextFiles []string

	tags        [][2]string
	pushStream  string
	pushRefs    []string
	pushOptions image.PushOptions

	removeErr  error
	removed    []string
	config     *container.Config
	hostConfig *container.HostConfig
	platform   *ocispec.Platform
	started    []string
	logs       string

	pingFailures int
	pings        int
}

func (f *fakeAPIClient) ImageBuild(
	_ context.Context,
	buildContext io.Reader,
	options build.ImageBuildOptions,
) (build.ImageBuildResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buildOptions = options

	reader := tar.NewReader(buildContext)

	for {
		header, err := reader.Next()
		if err != nil {
			break
		}

		f.contextFiles = append(f.contextFiles, header.Name)
	}

	return build.ImageBuildResponse{Body: io.NopCloser(strings.NewReader(f.buildStream))}, nil
}

func (f *fakeAPIClient) ImageTag(_ context.Context, source, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tags = append(f.tags, [2]string{source, target})

	return nil
}

func (f *fakeAPIClient) ImagePush(_ context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushRefs = append(f.pushRefs, ref)
	f.pushOptions = options

	return io.NopCloser(strings.NewReader(f.pushStream)), nil
}

func (f *fakeAPIClient) ContainerCreate(
	_ context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	_ *network.NetworkingConfig,
	platform *ocispec.Platform,
	containerName string,
) (container.CreateResponse, error) {
	f.config = config
	f.hostConfig = hostConfig
	f.platform = platform

	return container.CreateResponse{ID: containerName + "-id"}, nil
}

func (f *fakeAPIClient) ContainerStart(_ context.Context, containerID string, _ container.StartOptions) error {
	f.started = append(f.started, containerID)

	return nil
}

func (f *fakeAPIClient) ContainerRemove(_ context.Context, containerID string, _ container.RemoveOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}

	f.removed = append(f.removed, containerID)

	return nil
}

func (f *fakeAPIClient) ContainerLogs(_ context.Context, _ string, _ container.LogsOptions) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.logs)), nil
}

func (f *fakeAPIClient) Ping(context.Context) (types.Ping, error) {
	f.pings++
	if f.pings <= f.pingFailures {
		return types.Ping{}, errPingFailed
	}

	return types.Ping{APIVersion: "1.47"}, nil
}

func (f *fakeAPIClient) Close() error { return nil }
