package docker_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, api *fakeAPIClient) *docker.Engine {
	t.Helper()

	engine, err := docker.NewEngine(api, nil)
	require.NoError(t, err)

	return engine
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewEngine_RejectsNilClient(t *testing.T) {
	t.Parallel()

	_, err := docker.NewEngine(nil, nil)

	require.ErrorIs(t, err, docker.ErrAPIClientNil)
}

func TestBuild_SendsContextWithoutIgnoredFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM scratch\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "secrets.env"), "TOKEN=1\n")
	writeFile(t, filepath.Join(dir, ".dockerignore"), "# local only\nsecrets.env\n")

	api := &fakeAPIClient{buildStream: `{"stream":"Step 1/1 : FROM scratch\n"}` + "\n"}

	err := newEngine(t, api).Build(context.Background(), docker.BuildOptions{
		ContextDir: dir,
		Dockerfile: "Dockerfile",
		Tags:       []string{"ghcr.io/acme/api:v1"},
		BuildArgs:  map[string]string{"VERSION": "v1"},
		Target:     "runtime",
		Platform:   "linux/amd64",
	})

	require.NoError(t, err)
	assert.Contains(t, api.contextFiles, "main.go")
	assert.NotContains(t, api.contextFiles, "secrets.env")
	assert.Equal(t, []string{"ghcr.io/acme/api:v1"}, api.buildOptions.Tags)
	assert.Equal(t, "runtime", api.buildOptions.Target)
	assert.Equal(t, "linux/amd64", api.buildOptions.Platform)
	require.NotNil(t, api.buildOptions.BuildArgs["VERSION"])
	assert.Equal(t, "v1", *api.buildOptions.BuildArgs["VERSION"])
}

func TestBuild_FailsOnStreamError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM scratch\nRUN false\n")

	api := &fakeAPIClient{
		buildStream: `{"stream":"Step 1/2"}` + "\n" +
			`{"errorDetail":{"message":"RUN false returned 1"},"error":"RUN false returned 1"}` + "\n",
	}

	err := newEngine(t, api).Build(context.Background(), docker.BuildOptions{
		ContextDir: dir,
		Tags:       []string{"api:latest"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "build api:latest")
	assert.Contains(t, err.Error(), "RUN false returned 1")
}

func TestBuild_RequiresTag(t *testing.T) {
	t.Parallel()

	err := newEngine(t, &fakeAPIClient{}).Build(context.Background(), docker.BuildOptions{ContextDir: t.TempDir()})

	require.ErrorIs(t, err, docker.ErrNoTags)
}

func TestPush_EncodesCredentials(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{pushStream: `{"status":"Pushed"}` + "\n"}

	err := newEngine(t, api).Push(context.Background(), "ghcr.io/acme/api:v1", docker.Credentials{
		ServerAddress: "ghcr.io",
		Username:      "bot",
		Password:      "token",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ghcr.io/acme/api:v1"}, api.pushRefs)

	decoded, err := base64.URLEncoding.DecodeString(api.pushOptions.RegistryAuth)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), `"username":"bot"`)
	assert.Contains(t, string(decoded), `"serveraddress":"ghcr.io"`)
}

func TestPush_AnonymousWithoutCredentials(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{}

	require.NoError(t, newEngine(t, api).Push(context.Background(), "localhost:5000/api:v1", docker.Credentials{}))
	assert.Empty(t, api.pushOptions.RegistryAuth)
}

func TestPush_FailsOnStreamError(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{pushStream: `{"errorDetail":{"message":"denied"},"error":"denied"}` + "\n"}

	err := newEngine(t, api).Push(context.Background(), "ghcr.io/acme/api:v1", docker.Credentials{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestTag(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{}

	require.NoError(t, newEngine(t, api).Tag(context.Background(), "api:v1", "api:latest"))
	assert.Equal(t, [][2]string{{"api:v1", "api:latest"}}, api.tags)
}

func TestRunContainer_PublishesPortAndRestartPolicy(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{}

	id, err := newEngine(t, api).RunContainer(context.Background(), docker.RunOptions{
		Name:          "shop",
		Image:         "shop:latest",
		BindAddress:   "127.0.0.1",
		HostPort:      8080,
		ContainerPort: 3000,
		Env:           []string{"MODE=prod"},
		Platform:      "linux/arm64/v8",
	})

	require.NoError(t, err)
	assert.Equal(t, "shop-id", id)
	assert.Equal(t, []string{"shop-id"}, api.started)
	assert.Equal(t, []string{"MODE=prod"}, api.config.Env)
	assert.Equal(t, container.RestartPolicyUnlessStopped, api.hostConfig.RestartPolicy.Name)
	assert.Equal(
		t,
		[]nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "8080"}},
		api.hostConfig.PortBindings[nat.Port("3000/tcp")],
	)
	require.NotNil(t, api.platform)
	assert.Equal(t, "v8", api.platform.Variant)
}

func TestRemoveContainer_MissingIsNotAnError(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{removeErr: cerrdefs.ErrNotFound}

	removed, err := newEngine(t, api).RemoveContainer(context.Background(), "shop")

	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveContainer_Existing(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{}

	removed, err := newEngine(t, api).RemoveContainer(context.Background(), "shop")

	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"shop"}, api.removed)
}

func TestLogs_DemultiplexesStreams(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{logs: multiplexed(1, "listening on :3000\n") + multiplexed(2, "panic: boom\n")}

	logs, err := newEngine(t, api).Logs(context.Background(), "shop", 50)

	require.NoError(t, err)
	assert.Equal(t, "listening on :3000\npanic: boom\n", logs)
}

func TestWaitReady_RetriesPing(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{pingFailures: 2}

	err := newEngine(t, api).WaitReady(context.Background(), time.Second, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, api.pings)
}

func TestWaitReady_TimesOut(t *testing.T) {
	t.Parallel()

	api := &fakeAPIClient{pingFailures: 1 << 30}

	err := newEngine(t, api).WaitReady(context.Background(), 20*time.Millisecond, 5*time.Millisecond)

	require.ErrorIs(t, err, docker.ErrDaemonUnavailable)
}

func TestLoadEnvFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "# comment\nMODE=prod\n\nPORT=3000\n")

	env, err := docker.LoadEnvFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"MODE=prod", "PORT=3000"}, env)
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	platform, err := docker.ParsePlatform("")
	require.NoError(t, err)
	assert.Nil(t, platform)

	platform, err = docker.ParsePlatform("linux/amd64")
	require.NoError(t, err)
	assert.Equal(t, "linux", platform.OS)
	assert.Equal(t, "amd64", platform.Architecture)

	_, err = docker.ParsePlatform("linux")
	require.ErrorIs(t, err, docker.ErrInvalidPlatform)
}

// multiplexed frames payload the way the daemon does for non-TTY containers.
func multiplexed(stream byte, payload string) string {
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))

	var buf bytes.Buffer
	buf.Write(header)
	buf.WriteString(payload)

	return buf.String()
}
