// Package utils groups small packages used across deployctl:
//
//   - envvar: ${VAR} and ${VAR:-default} expansion in configuration values
//   - logging: the logrus logger behind --verbose
//   - notify: status lines with symbols, colors and timing
//   - timer: total and per-stage durations of a command
package utils
