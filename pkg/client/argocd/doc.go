// Package argocd talks to Argo CD through the Kubernetes API of the cluster it runs in.
//
// Clusters are registered declaratively with a labelled Secret, and Applications are
// read and refreshed through the dynamic client. No Argo CD API server credentials are
// needed.
package argocd
