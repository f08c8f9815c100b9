// Package project loads deployctl.yaml into a v1alpha1.Project.
//
// Values are layered as defaults < config file < DEPLOYCTL_* environment < bound flags.
// ${VAR} placeholders in string values are expanded from the environment after the layers
// are merged, so credentials never have to be written to the file.
package project
