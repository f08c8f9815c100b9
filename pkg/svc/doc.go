// Package svc contains the deployment logic that sits between commands and clients.
//
// Subpackages:
//   - deployer: image planning, builds, pushes and the compose, Watchtower and standalone flows
//   - health: bounded polling of an HTTP health endpoint
//   - pipeline: formatter runs, CI workflow rewrites and test scaffolding
//   - rollout: ConfigMap apply, deployment restart and in-cluster health check
//   - sessions: project discovery and the locked session registry
//   - verifier: the checks run by deployctl verify
package svc
