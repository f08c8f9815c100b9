// Package sessions maintains the registry of local projects that sessions can be started for.
//
// The registry is a JSON document shared by every deployctl process on the machine.
// Writers serialise on an exclusive lock file next to it and replace the document
// atomically, so session names stay unique across concurrent registrations.
package sessions
