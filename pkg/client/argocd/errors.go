package argocd

import "errors"

var (
	// ErrSyncTimeout is returned when an Application does not become Synced and Healthy in time.
	ErrSyncTimeout = errors.New("timeout waiting for argocd application sync")
	// ErrSourceNotAvailable is returned when Argo CD cannot fetch the Application source.
	ErrSourceNotAvailable = errors.New("argocd source is not available")
	// ErrOperationFailed is returned when the last sync operation failed.
	ErrOperationFailed = errors.New("argocd operation failed")
	// ErrApplicationRequired is returned when no Application name is configured.
	ErrApplicationRequired = errors.New("argocd application name is required")
	// ErrClusterNameRequired is returned when a cluster is registered without a name.
	ErrClusterNameRequired = errors.New("cluster name is required")
)
