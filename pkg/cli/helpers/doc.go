// Package helpers holds the plumbing shared by deployctl command handlers: flag names,
// project loading and the construction of clients from the project configuration.
package helpers
