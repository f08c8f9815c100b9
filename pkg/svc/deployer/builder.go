package deployer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/client/oci"
	"github.com/devantler-tech/deployctl/pkg/cmd/parallel"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
)

// ProjectLabel marks images and containers built by deployctl with the app name.
const ProjectLabel = "io.deployctl.project"

// Engine is the part of the Docker engine the deployer drives.
type Engine interface {
	Build(ctx context.Context, opts docker.BuildOptions) error
	Push(ctx context.Context, ref string, creds docker.Credentials) error
	RemoveContainer(ctx context.Context, name string) (bool, error)
	RunContainer(ctx context.Context, opts docker.RunOptions) (string, error)
	Logs(ctx context.Context, name string, tail int) (string, error)
}

var _ Engine = (*docker.Engine)(nil)

// BuildOptions control an image build run.
type BuildOptions struct {
	// ProjectDir anchors relative image contexts.
	ProjectDir string
	Project    string
	Platform   string
}

// Builder builds and pushes image plans.
type Builder struct {
	engine   Engine
	executor *parallel.Executor
	creds    docker.Credentials
	verifier oci.Verifier
	out      io.Writer
}

// NewBuilder returns a builder. A nil executor builds one image at a time; a nil
// verifier disables post-push verification.
func NewBuilder(
	engine Engine,
	executor *parallel.Executor,
	creds docker.Credentials,
	verifier oci.Verifier,
	out io.Writer,
) *Builder {
	if executor == nil {
		executor = parallel.NewExecutor(1)
	}

	if out == nil {
		out = io.Discard
	}

	return &Builder{
		engine:   engine,
		executor: executor,
		creds:    creds,
		verifier: verifier,
		out:      parallel.NewSyncWriter(out),
	}
}

// Build builds every plan concurrently. The first failure cancels the builds still running.
func (b *Builder) Build(ctx context.Context, plans []ImagePlan, opts BuildOptions) error {
	err := parallel.ForEach(ctx, b.executor, plans, func(ctx context.Context, plan ImagePlan) error {
		notify.Activityf(b.out, "building %s", plan.Primary())

		err := b.engine.Build(ctx, docker.BuildOptions{
			ContextDir: contextDir(opts.ProjectDir, plan.Image.Context),
			Dockerfile: plan.Image.Dockerfile,
			Tags:       plan.References,
			BuildArgs:  plan.Image.BuildArgs,
			Target:     plan.Image.Target,
			Platform:   opts.Platform,
			Labels:     labels(opts.Project),
		})
		if err != nil {
			return fmt.Errorf("build %s: %w", plan.Image.Name, err)
		}

		notify.Successf(b.out, "built %s", plan.Primary())

		return nil
	})
	if err != nil {
		return fmt.Errorf("build images: %w", err)
	}

	return nil
}

// Push pushes every reference of every plan in order. With verify set each pushed
// reference is resolved against the registry afterwards.
func (b *Builder) Push(ctx context.Context, plans []ImagePlan, verify bool) error {
	for _, ref := range AllReferences(plans) {
		notify.Activityf(b.out, "pushing %s", ref)

		err := b.engine.Push(ctx, ref, b.creds)
		if err != nil {
			return err
		}

		if !verify || b.verifier == nil {
			continue
		}

		digest, err := b.verifier.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("verify %s: %w", ref, err)
		}

		notify.Successf(b.out, "%s resolves to %s", ref, digest)
	}

	return nil
}

func contextDir(projectDir, buildContext string) string {
	if buildContext == "" {
		buildContext = "."
	}

	if filepath.IsAbs(buildContext) || projectDir == "" {
		return buildContext
	}

	return filepath.Join(projectDir, buildContext)
}

func labels(project string) map[string]string {
	if project == "" {
		return nil
	}

	return map[string]string{ProjectLabel: project}
}
