// Package docker drives the local Docker Engine: image builds, tags and pushes, and the
// single standalone container `deployctl image run` manages.
package docker
