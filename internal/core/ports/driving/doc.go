// Package driving defines the inbound ports: the service interfaces
// the CLI, REPL and TUI call into.
package driving
