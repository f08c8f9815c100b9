package k8s

import (
	"context"
	"fmt"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/client-go/kubernetes"
)

// DeploymentSelector returns the label selector of a deployment's pods.
func DeploymentSelector(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
) (*metav1.LabelSelector, error) {
	deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get deployment %s/%s: %w", namespace, name, err)
	}

	return deployment.Spec.Selector, nil
}

// FindRunningPod returns the name of a running pod matching selector. Candidates are
// ordered by name so repeated calls pick the same pod.
func FindRunningPod(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	selector *metav1.LabelSelector,
) (string, error) {
	labelSelector, err := metav1.LabelSelectorAsSelector(selector)
	if err != nil {
		return "", fmt.Errorf("invalid pod selector: %w", err)
	}

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector.String(),
		FieldSelector: fields.OneTermEqualSelector("status.phase", string(corev1.PodRunning)).String(),
	})
	if err != nil {
		return "", fmt.Errorf("list pods in %s: %w", namespace, err)
	}

	names := make([]string, 0, len(pods.Items))

	for i := range pods.Items {
		pod := &pods.Items[i]
		if pod.Status.Phase == corev1.PodRunning && pod.DeletionTimestamp == nil {
			names = append(names, pod.Name)
		}
	}

	if len(names) == 0 {
		return "", fmt.Errorf("%w for selector %q in %s", ErrNoRunningPod, labelSelector.String(), namespace)
	}

	slices.Sort(names)

	return names[0], nil
}

// DiagnosePodFailures returns one line per pod matching selector that is not running
// cleanly, or an empty string when every pod is healthy.
func DiagnosePodFailures(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	selector *metav1.LabelSelector,
) string {
	labelSelector, err := metav1.LabelSelectorAsSelector(selector)
	if err != nil {
		return ""
	}

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector.String(),
	})
	if err != nil {
		return fmt.Sprintf("(failed to list pods in %s: %v)", namespace, err)
	}

	var failures []string

	for i := range pods.Items {
		pod := &pods.Items[i]
		if !isPodHealthy(pod) {
			failures = append(failures, describePodFailure(pod))
		}
	}

	return strings.Join(failures, "\n")
}

func isPodHealthy(pod *corev1.Pod) bool {
	switch pod.Status.Phase {
	case corev1.PodRunning:
		for _, container := range pod.Status.ContainerStatuses {
			if !container.Ready {
				return false
			}
		}

		return true
	case corev1.PodSucceeded:
		return true
	case corev1.PodPending, corev1.PodFailed, corev1.PodUnknown:
		return false
	}

	return false
}

// describePodFailure prefers container waiting reasons (ImagePullBackOff, CrashLoopBackOff)
// over the pod phase.
func describePodFailure(pod *corev1.Pod) string {
	for _, container := range pod.Status.ContainerStatuses {
		if container.State.Waiting != nil && container.State.Waiting.Reason != "" {
			return fmt.Sprintf("%s: %s for %s", pod.Name, container.State.Waiting.Reason, container.Image)
		}

		if container.State.Terminated != nil && container.State.Terminated.ExitCode != 0 {
			return fmt.Sprintf(
				"%s: terminated with exit code %d (%s)",
				pod.Name, container.State.Terminated.ExitCode, container.State.Terminated.Reason,
			)
		}

		if !container.Ready && pod.Status.Phase == corev1.PodRunning {
			return fmt.Sprintf("%s: container %s not ready", pod.Name, container.Name)
		}
	}

	if pod.Status.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", pod.Name, pod.Status.Phase, pod.Status.Reason)
	}

	return fmt.Sprintf("%s: %s", pod.Name, pod.Status.Phase)
}
