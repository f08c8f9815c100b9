// Package oci checks pushed image tags against the registry HTTP API.
package oci
