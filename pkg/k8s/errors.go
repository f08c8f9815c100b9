package k8s

import "errors"

var (
	// ErrKubeconfigPathEmpty is returned when a kubeconfig path is required but empty.
	ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")
	// ErrContextNotFound is returned when a kubeconfig has no context with the requested name.
	ErrContextNotFound = errors.New("context not found in kubeconfig")
	// ErrContextExists is returned when a merge would overwrite an existing context.
	ErrContextExists = errors.New("context already exists in kubeconfig")
	// ErrNoRunningPod is returned when no running pod matches a selector.
	ErrNoRunningPod = errors.New("no running pod found")
	// ErrClusterIncomplete is returned when a context points at a missing cluster or user entry.
	ErrClusterIncomplete = errors.New("kubeconfig context is incomplete")
)
