package argocd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devantler-tech/deployctl/pkg/k8s/readiness"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/util/retry"
)

// DefaultNamespace is the namespace Argo CD is installed in by default.
const DefaultNamespace = "argocd"

const defaultPollInterval = 2 * time.Second

// Manager manages Argo CD resources in one namespace.
type Manager struct {
	clientset    kubernetes.Interface
	dynamic      dynamic.Interface
	namespace    string
	pollInterval time.Duration
}

// NewManager returns a Manager for the Argo CD installation in namespace.
func NewManager(clientset kubernetes.Interface, dyn dynamic.Interface, namespace string) *Manager {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Manager{
		clientset:    clientset,
		dynamic:      dyn,
		namespace:    namespace,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval changes the interval used by WaitForSync.
func (m *Manager) SetPollInterval(interval time.Duration) {
	m.pollInterval = interval
}

// RegisterCluster creates or replaces the cluster Secret. It reports whether the
// Secret was created.
func (m *Manager) RegisterCluster(ctx context.Context, cluster Cluster) (bool, error) {
	if cluster.Name == "" {
		return false, ErrClusterNameRequired
	}

	desired, err := BuildClusterSecret(m.namespace, cluster)
	if err != nil {
		return false, err
	}

	secrets := m.clientset.CoreV1().Secrets(m.namespace)

	existing, err := secrets.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return false, fmt.Errorf("get cluster secret %s: %w", desired.Name, err)
		}

		_, err = secrets.Create(ctx, desired, metav1.CreateOptions{})
		if err != nil {
			return false, fmt.Errorf("create cluster secret %s: %w", desired.Name, err)
		}

		return true, nil
	}

	desired.ResourceVersion = existing.ResourceVersion

	_, err = secrets.Update(ctx, desired, metav1.UpdateOptions{})
	if err != nil {
		return false, fmt.Errorf("update cluster secret %s: %w", desired.Name, err)
	}

	return false, nil
}

// ApplicationStatus returns the current status of an Application.
func (m *Manager) ApplicationStatus(ctx context.Context, name string) (Status, error) {
	if name == "" {
		return Status{}, ErrApplicationRequired
	}

	app, err := m.applications().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return Status{}, fmt.Errorf("get argocd application %s: %w", name, err)
	}

	return statusFromApplication(app), nil
}

// Refresh asks Argo CD to compare the Application with its source again. Update
// conflicts with the Argo CD controller are retried.
func (m *Manager) Refresh(ctx context.Context, name string, hard bool) error {
	if name == "" {
		return ErrApplicationRequired
	}

	apps := m.applications()

	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		app, err := apps.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return fmt.Errorf("get argocd application %s: %w", name, err)
		}

		annotations := app.GetAnnotations()
		if annotations == nil {
			annotations = make(map[string]string)
		}

		annotations[refreshAnnotationKey] = refreshNormal
		if hard {
			annotations[refreshAnnotationKey] = refreshHard
		}

		app.SetAnnotations(annotations)

		_, err = apps.Update(ctx, app, metav1.UpdateOptions{})
		if err != nil {
			return fmt.Errorf("refresh argocd application %s: %w", name, err)
		}

		return nil
	})
}

// WaitForSync polls the Application until it is Synced and Healthy. Failed operations
// and unreachable sources end the wait immediately. onStatus receives every observation.
func (m *Manager) WaitForSync(
	ctx context.Context,
	name string,
	timeout time.Duration,
	onStatus func(Status),
) error {
	if name == "" {
		return ErrApplicationRequired
	}

	apps := m.applications()

	err := readiness.PollForReadiness(ctx, m.pollInterval, timeout, func(ctx context.Context) (bool, error) {
		app, err := apps.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, fmt.Errorf("get argocd application %s: %w", name, err)
		}

		failure := applicationFailure(app)
		if failure != nil {
			return false, failure
		}

		status := statusFromApplication(app)
		if onStatus != nil {
			onStatus(status)
		}

		return status.Ready(), nil
	})
	if err != nil {
		if errors.Is(err, readiness.ErrTimeoutExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrSyncTimeout, name, timeout)
		}

		return err
	}

	return nil
}

func (m *Manager) applications() dynamic.ResourceInterface {
	return m.dynamic.Resource(ApplicationGVR).Namespace(m.namespace)
}
