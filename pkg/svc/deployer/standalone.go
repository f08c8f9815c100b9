package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
)

// LogTailLines is the number of container log lines shown when a health check fails.
const LogTailLines = 50

// ErrContainerNameRequired is returned when a standalone run has no container name.
var ErrContainerNameRequired = errors.New("standalone.containerName is required")

// HealthWaiter waits for a URL to report healthy.
type HealthWaiter interface {
	Wait(ctx context.Context, url string) error
}

// RunOptions describe one standalone container run.
type RunOptions struct {
	Image    string
	Config   v1alpha1.Standalone
	Project  string
	Platform string
	NoHealth bool
}

// RunStandalone replaces the container named in opts with a fresh one of opts.Image
// and waits until its health endpoint answers. When the wait fails, the last
// LogTailLines lines of the container log are written to out.
func RunStandalone(
	ctx context.Context,
	engine Engine,
	health HealthWaiter,
	opts RunOptions,
	out io.Writer,
) error {
	cfg := opts.Config
	if cfg.ContainerName == "" {
		return ErrContainerNameRequired
	}

	removed, err := engine.RemoveContainer(ctx, cfg.ContainerName)
	if err != nil {
		return err
	}

	if removed {
		notify.Activityf(out, "removed existing container %s", cfg.ContainerName)
	}

	var env []string

	if cfg.EnvFile != "" {
		env, err = docker.LoadEnvFile(cfg.EnvFile)
		if err != nil {
			return err
		}
	}

	notify.Activityf(
		out, "starting %s on %s",
		cfg.ContainerName, net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.HostPort)),
	)

	_, err = engine.RunContainer(ctx, docker.RunOptions{
		Name:          cfg.ContainerName,
		Image:         opts.Image,
		BindAddress:   cfg.BindAddress,
		HostPort:      cfg.HostPort,
		ContainerPort: cfg.ContainerPort,
		Env:           env,
		Platform:      opts.Platform,
		Labels:        labels(opts.Project),
	})
	if err != nil {
		return err
	}

	if opts.NoHealth {
		return nil
	}

	url := StandaloneHealthURL(cfg)

	notify.Activityf(out, "polling %s", url)

	err = health.Wait(ctx, url)
	if err != nil {
		logs, logErr := engine.Logs(ctx, cfg.ContainerName, LogTailLines)
		if logErr == nil && strings.TrimSpace(logs) != "" {
			notify.Warningf(out, "last %d log lines of %s:\n%s", LogTailLines, cfg.ContainerName, strings.TrimRight(logs, "\n"))
		}

		return fmt.Errorf("container %s: %w", cfg.ContainerName, err)
	}

	notify.Successf(out, "container %s is healthy", cfg.ContainerName)

	return nil
}

// StandaloneHealthURL is the loopback URL probed after a standalone run.
func StandaloneHealthURL(cfg v1alpha1.Standalone) string {
	host := cfg.BindAddress
	if host == "" || host == "0.0.0.0" {
		host = v1alpha1.DefaultBindAddress
	}

	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.HostPort)) + cfg.HealthPath
}
