package readiness

import (
	"context"
	"fmt"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/kubectl/pkg/polymorphichelpers"
)

// RolloutStatus is one observation of a deployment rollout.
type RolloutStatus struct {
	Message string
	Done    bool
}

// DeploymentRolloutStatus reports the current rollout state of a deployment in the
// words of `kubectl rollout status`. A deployment past its progress deadline is an error.
func DeploymentRolloutStatus(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
) (RolloutStatus, error) {
	deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return RolloutStatus{}, fmt.Errorf("get deployment %s/%s: %w", namespace, name, err)
	}

	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(deployment)
	if err != nil {
		return RolloutStatus{}, fmt.Errorf("convert deployment %s/%s: %w", namespace, name, err)
	}

	viewer := &polymorphichelpers.DeploymentStatusViewer{}

	message, done, err := viewer.Status(&unstructured.Unstructured{Object: content}, 0)
	if err != nil {
		return RolloutStatus{}, fmt.Errorf("deployment %s/%s: %w", namespace, name, err)
	}

	return RolloutStatus{Message: strings.TrimSpace(message), Done: done}, nil
}

// WaitForDeploymentRollout polls the deployment every interval until its rollout
// completes or timeout elapses. onProgress receives each distinct status message.
func WaitForDeploymentRollout(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	interval, timeout time.Duration,
	onProgress func(message string),
) error {
	var lastMessage string

	return PollForReadiness(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		status, err := DeploymentRolloutStatus(ctx, clientset, namespace, name)
		if err != nil {
			return false, err
		}

		if status.Message != lastMessage && onProgress != nil {
			onProgress(status.Message)
		}

		lastMessage = status.Message

		return status.Done, nil
	})
}
