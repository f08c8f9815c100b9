package deployer

import (
	"context"
	"errors"
	"io"

	"github.com/devantler-tech/deployctl/pkg/client/compose"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
)

// ErrHealthURLRequired is returned when a deploy should be health checked but no URL is configured.
var ErrHealthURLRequired = errors.New("health.url is required unless health checks are disabled")

// ComposeUpper starts compose projects.
type ComposeUpper interface {
	Up(ctx context.Context, opts compose.UpOptions) error
}

// ImageUpdater asks a remote host to pull new images.
type ImageUpdater interface {
	Update(ctx context.Context, images ...string) error
}

// DeployOptions are shared by the compose and webhook flows.
type DeployOptions struct {
	Build     BuildOptions
	SkipBuild bool
	NoHealth  bool
	HealthURL string
}

// Deployer pushes images and hands them to a runtime.
type Deployer struct {
	builder *Builder
	health  HealthWaiter
	out     io.Writer
}

// NewDeployer returns a deployer that builds through builder.
func NewDeployer(builder *Builder, health HealthWaiter, out io.Writer) *Deployer {
	if out == nil {
		out = io.Discard
	}

	return &Deployer{builder: builder, health: health, out: out}
}

// Compose builds and pushes plans, then brings the compose project up.
func (d *Deployer) Compose(
	ctx context.Context,
	plans []ImagePlan,
	runner ComposeUpper,
	up compose.UpOptions,
	opts DeployOptions,
) error {
	err := d.publish(ctx, plans, opts)
	if err != nil {
		return err
	}

	notify.Activityf(d.out, "docker compose -f %s up -d", up.File)

	err = runner.Up(ctx, up)
	if err != nil {
		return err
	}

	notify.Successf(d.out, "compose project started")

	return d.checkHealth(ctx, opts)
}

// Webhook builds and pushes plans, then triggers a Watchtower update. With onlyBuilt
// the update is restricted to the repositories of the pushed references.
func (d *Deployer) Webhook(
	ctx context.Context,
	plans []ImagePlan,
	updater ImageUpdater,
	onlyBuilt bool,
	opts DeployOptions,
) error {
	var (
		images []string
		err    error
	)

	if onlyBuilt {
		images, err = Repositories(plans)
		if err != nil {
			return err
		}
	}

	err = d.publish(ctx, plans, opts)
	if err != nil {
		return err
	}

	notify.Activityf(d.out, "triggering watchtower update")

	err = updater.Update(ctx, images...)
	if err != nil {
		return err
	}

	notify.Successf(d.out, "watchtower update triggered")

	return d.checkHealth(ctx, opts)
}

func (d *Deployer) publish(ctx context.Context, plans []ImagePlan, opts DeployOptions) error {
	if !opts.NoHealth && opts.HealthURL == "" {
		return ErrHealthURLRequired
	}

	if !opts.SkipBuild {
		err := d.builder.Build(ctx, plans, opts.Build)
		if err != nil {
			return err
		}
	}

	return d.builder.Push(ctx, plans, false)
}

func (d *Deployer) checkHealth(ctx context.Context, opts DeployOptions) error {
	if opts.NoHealth {
		return nil
	}

	notify.Activityf(d.out, "polling %s", opts.HealthURL)

	err := d.health.Wait(ctx, opts.HealthURL)
	if err != nil {
		return err
	}

	notify.Successf(d.out, "%s is healthy", opts.HealthURL)

	return nil
}
