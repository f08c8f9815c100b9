package rollout

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/yaml"
)

var (
	// ErrNotConfigMap is returned when a manifest declares a kind other than ConfigMap.
	ErrNotConfigMap = errors.New("manifest is not a ConfigMap")
	// ErrConfigMapNameRequired is returned when a manifest has no metadata.name.
	ErrConfigMapNameRequired = errors.New("configmap manifest has no name")
)

// DecodeConfigMap parses a YAML or JSON manifest. The namespace defaults to defaultNamespace.
func DecodeConfigMap(data []byte, defaultNamespace string) (*corev1.ConfigMap, error) {
	var typeMeta metav1.TypeMeta

	err := yaml.Unmarshal(data, &typeMeta)
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if typeMeta.Kind != "ConfigMap" {
		return nil, fmt.Errorf("%w: kind %q", ErrNotConfigMap, typeMeta.Kind)
	}

	var configMap corev1.ConfigMap

	err = yaml.Unmarshal(data, &configMap)
	if err != nil {
		return nil, fmt.Errorf("decode configmap: %w", err)
	}

	if configMap.Name == "" {
		return nil, ErrConfigMapNameRequired
	}

	if configMap.Namespace == "" {
		configMap.Namespace = defaultNamespace
	}

	return &configMap, nil
}

// ApplyConfigMap creates the ConfigMap or replaces the data of the existing one.
// It reports whether the ConfigMap was created.
func ApplyConfigMap(ctx context.Context, clientset kubernetes.Interface, desired *corev1.ConfigMap) (bool, error) {
	configMaps := clientset.CoreV1().ConfigMaps(desired.Namespace)

	created := false

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		existing, err := configMaps.Get(ctx, desired.Name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			_, err = configMaps.Create(ctx, desired.DeepCopy(), metav1.CreateOptions{})
			created = err == nil

			return err
		}

		if err != nil {
			return err
		}

		updated := desired.DeepCopy()
		updated.ResourceVersion = existing.ResourceVersion

		_, err = configMaps.Update(ctx, updated, metav1.UpdateOptions{})

		return err
	})
	if err != nil {
		return false, fmt.Errorf("apply configmap %s/%s: %w", desired.Namespace, desired.Name, err)
	}

	return created, nil
}
