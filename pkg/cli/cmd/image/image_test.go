package image_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/cli/cmd/image"
	"github.com/devantler-tech/deployctl/pkg/cli/cmdtest"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/client/oci"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	buildStream       = `{"stream":"Step 1/2 : FROM alpine"}` + "\n"
	failedBuildStream = `{"errorDetail":{"message":"COPY failed: file not found"},"error":"COPY failed: file not found"}` + "\n"
	pushStream        = `{"status":"Pushed"}` + "\n"
)

type fakeVerifier struct {
	mu       sync.Mutex
	resolved []string
}

func (f *fakeVerifier) Resolve(_ context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolved = append(f.resolved, ref)

	return "sha256:abc", nil
}

func newDockerClient() *docker.MockAPIClient {
	client := docker.NewMockAPIClient()
	client.On("Ping", mock.Anything).Return("1.47", nil)
	client.On("Close").Return(nil)

	return client
}

func newRuntime(client *docker.MockAPIClient, verifier oci.Verifier) *di.Runtime {
	return di.NewRuntime(
		di.ProvideValue[docker.ClientFactory](func() (docker.APIClient, error) { return client, nil }),
		di.ProvideValue[di.RegistryVerifierFactory](func(oci.Credentials, bool) oci.Verifier { return verifier }),
	)
}

func writeProject(t *testing.T, extra string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM alpine\n"), 0o600))

	return cmdtest.WriteProject(t, fmt.Sprintf(`apiVersion: deployctl.io/v1alpha1
kind: Project
spec:
  app:
    name: shop
    directory: %s
  registry:
    host: ghcr.io
    repository: acme
  images:
    - name: api
    - name: web
  health:
    attempts: 2
    interval: 10ms
%s`, dir, extra))
}

func builtTags(client *docker.MockAPIClient) []string {
	var tags []string

	for _, call := range client.Calls {
		if call.Method != "ImageBuild" {
			continue
		}

		options, ok := call.Arguments.Get(1).(build.ImageBuildOptions)
		if ok {
			tags = append(tags, options.Tags...)
		}
	}

	return tags
}

func TestBuild_BuildsPushesAndVerifies(t *testing.T) {
	t.Parallel()

	client := newDockerClient()
	client.On("ImageBuild", mock.Anything, mock.Anything).Return(buildStream, nil)
	client.On("ImagePush", mock.Anything, mock.Anything, mock.Anything).Return(pushStream, nil)

	verifier := &fakeVerifier{}

	result, err := cmdtest.Run(
		t, image.NewImageCmd(newRuntime(client, verifier)), writeProject(t, ""),
		"build", "--tag", "v1.4.0", "--also-latest", "--push", "--verify",
	)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"ghcr.io/acme/api:v1.4.0", "ghcr.io/acme/api:latest",
		"ghcr.io/acme/web:v1.4.0", "ghcr.io/acme/web:latest",
	}, builtTags(client))
	client.AssertNumberOfCalls(t, "ImagePush", 4)
	assert.Len(t, verifier.resolved, 4)
	assert.Contains(t, result.Stdout, "✔ 2 image(s) built")
	assert.Contains(t, result.Stdout, "✔ 4 tag(s) pushed")
}

func TestBuild_OnlyNamedImagesWithoutPush(t *testing.T) {
	t.Parallel()

	client := newDockerClient()
	client.On("ImageBuild", mock.Anything, mock.Anything).Return(buildStream, nil)

	_, err := cmdtest.Run(
		t, image.NewImageCmd(newRuntime(client, nil)), writeProject(t, "  tag: main\n"), "build", "web",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghcr.io/acme/web:main"}, builtTags(client))
	client.AssertNotCalled(t, "ImagePush", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuild_FailedBuildStream(t *testing.T) {
	t.Parallel()

	client := newDockerClient()
	client.On("ImageBuild", mock.Anything, mock.Anything).Return(failedBuildStream, nil)

	_, err := cmdtest.Run(t, image.NewImageCmd(newRuntime(client, nil)), writeProject(t, ""), "build", "--push")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY failed")
	client.AssertNotCalled(t, "ImagePush", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "verify without push", args: []string{"build", "--verify"}, want: image.ErrVerifyWithoutPush},
		{name: "unknown image", args: []string{"build", "worker"}, want: deployer.ErrUnknownImage},
		{name: "invalid version tag", args: []string{"build", "--tag", "v1.2.3-01"}, want: deployer.ErrInvalidVersionTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := cmdtest.Run(
				t, image.NewImageCmd(newRuntime(newDockerClient(), nil)), writeProject(t, ""), tt.args...,
			)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_ReplacesContainerAndChecksHealth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	_, rawPort, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)

	client := newDockerClient()
	client.On("ImageBuild", mock.Anything, mock.Anything).Return(buildStream, nil)
	client.On("ContainerRemove", mock.Anything, "shop", mock.Anything).Return(nil)
	client.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "shop").
		Return(container.CreateResponse{ID: "c0ffee"}, nil)
	client.On("ContainerStart", mock.Anything, "c0ffee", mock.Anything).Return(nil)

	result, err := cmdtest.Run(
		t, image.NewImageCmd(newRuntime(client, nil)),
		writeProject(t, fmt.Sprintf("  standalone:\n    image: web\n    containerName: shop\n    hostPort: %d\n", port)),
		"run",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghcr.io/acme/web:latest"}, builtTags(client))
	client.AssertCalled(t, "ContainerCreate", mock.Anything,
		mock.MatchedBy(func(config *container.Config) bool { return config.Image == "ghcr.io/acme/web:latest" }),
		mock.MatchedBy(func(hostConfig *container.HostConfig) bool {
			return hostConfig.RestartPolicy.Name == container.RestartPolicyUnlessStopped
		}),
		mock.Anything, "shop",
	)
	assert.Contains(t, result.Stdout, "removed existing container shop")
	assert.Contains(t, result.Stdout, "container shop is healthy")
}

func TestRun_RequiresContainerName(t *testing.T) {
	t.Parallel()

	_, err := cmdtest.Run(
		t, image.NewImageCmd(newRuntime(newDockerClient(), nil)),
		writeProject(t, "  standalone:\n    image: web\n"),
		"run", "--skip-build", "--no-health",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.standalone.containerName")
}
