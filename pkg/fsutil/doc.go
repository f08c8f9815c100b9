// Package fsutil holds the file helpers shared by deployctl commands: home-relative path
// expansion, create-only writes and atomic replacement of files other tools also read.
package fsutil
