// Package cmd provides the command-line interface for deployctl.
//
// This package contains the root command and delegates to subcommand packages:
//   - cluster: Register clusters in the kubeconfig and with ArgoCD
//   - workload: Apply configuration, restart and inspect the deployment
//   - image: Build, push and run the project's images
//   - deploy: Ship images to a Docker host through compose or Watchtower
//   - gateway: Configure and inspect Kong routes
//   - pipeline: Repair CI formatting, workflows and tests
//   - project: Maintain the local session registry
//   - verify: Check every part of a deployment
package cmd
