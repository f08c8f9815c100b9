// Package readiness waits for Kubernetes workloads to finish rolling out.
//
// Deployment progress is judged by kubectl's deployment status viewer, so the
// messages printed while waiting match `kubectl rollout status`.
package readiness
