package rollout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/k8s/readiness"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"k8s.io/client-go/kubernetes"
)

// ErrHealthPortRequired is returned when a health check is requested without a pod port.
var ErrHealthPortRequired = errors.New("health check needs kubernetes.healthPort")

// HealthWaiter waits for a URL to report healthy.
type HealthWaiter interface {
	Wait(ctx context.Context, url string) error
}

// Options select the deployment an update targets and the steps it runs.
type Options struct {
	Namespace  string
	Deployment string
	HealthPort int
	HealthPath string
	Timeout    time.Duration
	// PollInterval defaults to readiness.DefaultPollInterval.
	PollInterval time.Duration
	NoRestart    bool
	NoHealth     bool
}

// Updater runs ConfigMap updates against one cluster.
type Updater struct {
	clientset kubernetes.Interface
	forwarder k8s.PortForwarder
	health    HealthWaiter
	out       io.Writer
	now       func() time.Time
}

// NewUpdater returns an updater that reports progress to out.
func NewUpdater(
	clientset kubernetes.Interface,
	forwarder k8s.PortForwarder,
	health HealthWaiter,
	out io.Writer,
) *Updater {
	if out == nil {
		out = io.Discard
	}

	return &Updater{
		clientset: clientset,
		forwarder: forwarder,
		health:    health,
		out:       out,
		now:       time.Now,
	}
}

// Apply applies the ConfigMap manifest, then restarts the deployment, waits for its
// rollout and checks its health unless opts disable those steps.
func (u *Updater) Apply(ctx context.Context, manifest []byte, opts Options) error {
	configMap, err := DecodeConfigMap(manifest, opts.Namespace)
	if err != nil {
		return err
	}

	notify.Activityf(u.out, "applying configmap %s/%s", configMap.Namespace, configMap.Name)

	created, err := ApplyConfigMap(ctx, u.clientset, configMap)
	if err != nil {
		return err
	}

	if created {
		notify.Successf(u.out, "configmap %s created", configMap.Name)
	} else {
		notify.Successf(u.out, "configmap %s updated", configMap.Name)
	}

	if opts.NoRestart {
		notify.Infof(u.out, "skipping restart of deployment %s", opts.Deployment)

		return nil
	}

	err = u.Restart(ctx, opts)
	if err != nil {
		return err
	}

	if opts.NoHealth {
		return nil
	}

	return u.CheckHealth(ctx, opts)
}

// Restart rolls the deployment and waits until the rollout completes. On timeout the
// unhealthy pods of the deployment are listed in the error.
func (u *Updater) Restart(ctx context.Context, opts Options) error {
	notify.Activityf(u.out, "restarting deployment %s/%s", opts.Namespace, opts.Deployment)

	err := RestartDeployment(ctx, u.clientset, opts.Namespace, opts.Deployment, u.now())
	if err != nil {
		return err
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = readiness.DefaultPollInterval
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = v1alpha1.DefaultRolloutTimeout
	}

	err = readiness.WaitForDeploymentRollout(
		ctx,
		u.clientset,
		opts.Namespace,
		opts.Deployment,
		interval,
		timeout,
		func(message string) { notify.Activityf(u.out, "%s", message) },
	)
	if err != nil {
		return u.describeRolloutFailure(ctx, opts, err)
	}

	notify.Successf(u.out, "deployment %s rolled out", opts.Deployment)

	return nil
}

// CheckHealth forwards a local port to a running pod and polls its health path.
func (u *Updater) CheckHealth(ctx context.Context, opts Options) error {
	if opts.HealthPort <= 0 {
		return ErrHealthPortRequired
	}

	selector, err := k8s.DeploymentSelector(ctx, u.clientset, opts.Namespace, opts.Deployment)
	if err != nil {
		return err
	}

	pod, err := k8s.FindRunningPod(ctx, u.clientset, opts.Namespace, selector)
	if err != nil {
		return err
	}

	notify.Activityf(u.out, "forwarding to pod %s port %d", pod, opts.HealthPort)

	tunnel, err := u.forwarder.Forward(ctx, k8s.ForwardOptions{
		Namespace:  opts.Namespace,
		Pod:        pod,
		RemotePort: opts.HealthPort,
	})
	if err != nil {
		return fmt.Errorf("port-forward to %s: %w", pod, err)
	}

	defer tunnel.Close()

	url := tunnel.URL(opts.HealthPath)

	notify.Activityf(u.out, "polling %s", url)

	err = u.health.Wait(ctx, url)
	if err != nil {
		return fmt.Errorf("pod %s: %w", pod, err)
	}

	notify.Successf(u.out, "pod %s is healthy", pod)

	return nil
}

func (u *Updater) describeRolloutFailure(ctx context.Context, opts Options, cause error) error {
	err := fmt.Errorf("rollout of %s/%s: %w", opts.Namespace, opts.Deployment, cause)

	selector, selErr := k8s.DeploymentSelector(ctx, u.clientset, opts.Namespace, opts.Deployment)
	if selErr != nil {
		return err
	}

	diagnostics := k8s.DiagnosePodFailures(ctx, u.clientset, opts.Namespace, selector)
	if diagnostics == "" {
		return err
	}

	return fmt.Errorf("%w\n%s", err, diagnostics)
}
