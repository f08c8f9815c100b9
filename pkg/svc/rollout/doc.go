// Package rollout applies a ConfigMap to a cluster and rolls the consuming deployment.
//
// The update runs as a flat sequence: apply the ConfigMap, restart the deployment, wait
// for the rollout, then probe the health endpoint of one running pod through a
// port-forward. The first failing step ends the update; nothing is rolled back.
package rollout
