package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/client/argocd"
	"github.com/devantler-tech/deployctl/pkg/client/github"
	"github.com/devantler-tech/deployctl/pkg/k8s/readiness"
	"k8s.io/client-go/kubernetes"
)

var (
	// ErrRolloutIncomplete is returned when a deployment has not finished rolling out.
	ErrRolloutIncomplete = errors.New("rollout incomplete")
	// ErrApplicationNotReady is returned when an Application is not Synced and Healthy.
	ErrApplicationNotReady = errors.New("application not synced and healthy")
	// ErrWorkflowFailed is returned when the latest workflow run failed.
	ErrWorkflowFailed = errors.New("latest workflow run failed")
)

// ApplicationReader reads ArgoCD Application status.
type ApplicationReader interface {
	ApplicationStatus(ctx context.Context, name string) (argocd.Status, error)
}

// RunReader reads workflow runs.
type RunReader interface {
	LatestRun(ctx context.Context, repository, branch, workflow string) (github.Run, error)
}

// HealthWaiter waits for a URL to report healthy.
type HealthWaiter interface {
	Wait(ctx context.Context, url string) error
}

// KubernetesCheck passes when the deployment exists and its rollout is complete.
func KubernetesCheck(clientset kubernetes.Interface, namespace, deployment string) Check {
	return func(ctx context.Context) (string, error) {
		if deployment == "" {
			return "", fmt.Errorf("%w: kubernetes.deployment is empty", ErrNotConfigured)
		}

		status, err := readiness.DeploymentRolloutStatus(ctx, clientset, namespace, deployment)
		if err != nil {
			return "", err
		}

		if !status.Done {
			return "", fmt.Errorf("%w: %s", ErrRolloutIncomplete, status.Message)
		}

		return status.Message, nil
	}
}

// ArgoCDCheck passes when the Application is Synced and Healthy.
func ArgoCDCheck(reader ApplicationReader, application string) Check {
	return func(ctx context.Context) (string, error) {
		if application == "" {
			return "", fmt.Errorf("%w: argocd.application is empty", ErrNotConfigured)
		}

		status, err := reader.ApplicationStatus(ctx, application)
		if err != nil {
			return "", err
		}

		if !status.Ready() {
			return "", fmt.Errorf("%w: %s", ErrApplicationNotReady, status)
		}

		return status.String(), nil
	}
}

// GitHubCheck reports the latest workflow run and fails when it failed. A run that is
// still in progress passes with its status.
func GitHubCheck(reader RunReader, cfg v1alpha1.GitHub) Check {
	return func(ctx context.Context) (string, error) {
		if cfg.Repository == "" {
			return "", fmt.Errorf("%w: github.repository is empty", ErrNotConfigured)
		}

		run, err := reader.LatestRun(ctx, cfg.Repository, cfg.Branch, cfg.Workflow)
		if err != nil {
			return "", err
		}

		detail := describeRun(run)

		if run.Failed() {
			return "", fmt.Errorf("%w: %s", ErrWorkflowFailed, detail)
		}

		return detail, nil
	}
}

// HealthCheck polls url with waiter.
func HealthCheck(waiter HealthWaiter, url string) Check {
	return func(ctx context.Context) (string, error) {
		if url == "" {
			return "", fmt.Errorf("%w: health.url is empty", ErrNotConfigured)
		}

		err := waiter.Wait(ctx, url)
		if err != nil {
			return "", err
		}

		return url + " is healthy", nil
	}
}

func describeRun(run github.Run) string {
	parts := []string{fmt.Sprintf("%s #%d", run.Name, run.Number), run.Status}
	if run.Conclusion != "" {
		parts = append(parts, run.Conclusion)
	}

	if run.URL != "" {
		parts = append(parts, run.URL)
	}

	return strings.Join(parts, " ")
}
