// Package driven defines the outbound ports: interfaces the core
// services depend on, implemented by adapters (the IMAP connector,
// the config store, the header cache).
package driven
