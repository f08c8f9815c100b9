package rollout

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/util/retry"
)

// RestartedAtAnnotation is the pod template annotation `kubectl rollout restart` sets.
const RestartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"

// RestartDeployment triggers a new rollout by stamping the pod template with now.
func RestartDeployment(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	now time.Time,
) error {
	deployments := clientset.AppsV1().Deployments(namespace)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		deployment, err := deployments.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}

		if deployment.Spec.Template.Annotations == nil {
			deployment.Spec.Template.Annotations = map[string]string{}
		}

		deployment.Spec.Template.Annotations[RestartedAtAnnotation] = now.Format(time.RFC3339)

		_, err = deployments.Update(ctx, deployment, metav1.UpdateOptions{})

		return err
	})
	if err != nil {
		return fmt.Errorf("restart deployment %s/%s: %w", namespace, name, err)
	}

	return nil
}
