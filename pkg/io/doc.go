// Package io provides configuration input for deployctl.
//
// Subpackages:
//   - configmanager: shared loader contract
//   - configmanager/project: loads deployctl.yaml with viper, flag overrides and defaults
//
// For low-level file operations see the fsutil package.
package io
