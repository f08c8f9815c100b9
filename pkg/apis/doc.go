// Package apis provides the versioned types of deployctl configuration.
//
//   - project: the Project kind read from deployctl.yaml
package apis
