// Package deployer builds, pushes and starts the project's container images.
//
// It backs `image build`, `image run`, `deploy compose` and `deploy webhook`. Each flow is
// a flat sequence of steps that stops at the first failure.
package deployer
