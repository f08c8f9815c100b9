// Package k8s builds Kubernetes clients for a deployctl project and holds the
// cluster-level helpers the commands share: kubeconfig merging, pod lookup,
// port-forwarding and pod failure diagnostics.
//
// For rollout polling, see the [readiness] sub-package.
package k8s
