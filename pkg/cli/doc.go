// Package cli holds the command-line layer of deployctl.
//
// Subpackages:
//
//   - cli/cmd: the root command and one package per command group
//   - cli/cmdtest: helpers that run commands against a temporary project file in tests
//   - cli/helpers: project loading, shared flags and client construction for commands
//   - cli/ui/errorhandler: turns cobra failures into errors carrying cobra's own message
package cli
