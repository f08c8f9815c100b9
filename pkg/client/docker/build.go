package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/jsonmessage"
	archive "github.com/moby/go-archive"
	"github.com/moby/patternmatcher/ignorefile"
)

// ErrNoTags is returned when a build has no tag to apply.
var ErrNoTags = errors.New("image build needs at least one tag")

// BuildOptions describe one image build.
type BuildOptions struct {
	// ContextDir is sent to the daemon as the build context, minus .dockerignore matches.
	ContextDir string
	// Dockerfile is relative to ContextDir.
	Dockerfile string
	Tags       []string
	BuildArgs  map[string]string
	Target     string
	Platform   string
	Labels     map[string]string
}

// Build builds an image and fails when the daemon reports an error in the build stream.
func (e *Engine) Build(ctx context.Context, opts BuildOptions) error {
	if len(opts.Tags) == 0 {
		return ErrNoTags
	}

	excludes, err := readDockerignore(opts.ContextDir)
	if err != nil {
		return err
	}

	buildContext, err := archive.TarWithOptions(opts.ContextDir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return fmt.Errorf("archive build context %s: %w", opts.ContextDir, err)
	}

	defer func() { _ = buildContext.Close() }()

	resp, err := e.client.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:        opts.Tags,
		Dockerfile:  opts.Dockerfile,
		BuildArgs:   buildArgs(opts.BuildArgs),
		Target:      opts.Target,
		Platform:    opts.Platform,
		Labels:      opts.Labels,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("build %s: %w", opts.Tags[0], err)
	}

	defer func() { _ = resp.Body.Close() }()

	err = jsonmessage.DisplayJSONMessagesStream(resp.Body, e.progress, 0, false, nil)
	if err != nil {
		return fmt.Errorf("build %s: %w", opts.Tags[0], err)
	}

	return nil
}

func buildArgs(args map[string]string) map[string]*string {
	if len(args) == 0 {
		return nil
	}

	out := make(map[string]*string, len(args))

	for key, value := range args {
		out[key] = &value
	}

	return out
}

func readDockerignore(contextDir string) ([]string, error) {
	file, err := os.Open(filepath.Join(contextDir, ".dockerignore"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("open .dockerignore: %w", err)
	}

	defer func() { _ = file.Close() }()

	patterns, err := ignorefile.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read .dockerignore: %w", err)
	}

	return patterns, nil
}
