package deployer_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/devantler-tech/deployctl/pkg/client/compose"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
)

var (
	errBuildFailed = errors.New("COPY failed: file not found")
	errUnhealthy   = errors.New("health check failed")
)

type fakeEngine struct {
	mu sync.Mutex

	builds   []docker.BuildOptions
	buildErr map[string]error
	pushes   []string
	creds    docker.Credentials

	existing bool
	removed  []string
	runs     []docker.RunOptions
	logs     string
}

func (f *fakeEngine) Build(_ context.Context, opts docker.BuildOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.builds = append(f.builds, opts)

	return f.buildErr[opts.Tags[0]]
}

func (f *fakeEngine) Push(_ context.Context, ref string, creds docker.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushes = append(f.pushes, ref)
	f.creds = creds

	return nil
}

func (f *fakeEngine) RemoveContainer(_ context.Context, name string) (bool, error) {
	f.removed = append(f.removed, name)

	return f.existing, nil
}

func (f *fakeEngine) RunContainer(_ context.Context, opts docker.RunOptions) (string, error) {
	f.runs = append(f.runs, opts)

	return opts.Name + "-id", nil
}

func (f *fakeEngine) Logs(context.Context, string, int) (string, error) {
	return f.logs, nil
}

func (f *fakeEngine) builtTags() []string {
	tags := make([]string, 0, len(f.builds))
	for _, build := range f.builds {
		tags = append(tags, build.Tags[0])
	}

	slices.Sort(tags)

	return tags
}

type fakeVerifier struct {
	resolved []string
}

func (f *fakeVerifier) Resolve(_ context.Context, ref string) (string, error) {
	f.resolved = append(f.resolved, ref)

	return "sha256:0123", nil
}

type fakeHealth struct {
	urls []string
	err  error
}

func (f *fakeHealth) Wait(_ context.Context, url string) error {
	f.urls = append(f.urls, url)

	return f.err
}

type fakeCompose struct {
	opts []compose.UpOptions
}

func (f *fakeCompose) Up(_ context.Context, opts compose.UpOptions) error {
	f.opts = append(f.opts, opts)

	return nil
}

type fakeUpdater struct {
	calls [][]string
}

func (f *fakeUpdater) Update(_ context.Context, images ...string) error {
	f.calls = append(f.calls, images)

	return nil
}
