// Package v1alpha1 contains the deployctl project configuration types.
//
// A project file (deployctl.yaml) describes one application: the images it builds,
// the registry it pushes to, where it runs (Kubernetes, a compose host watched by
// Watchtower, or a standalone container), the Kong routes in front of it and the
// local session registry it belongs to.
package v1alpha1
