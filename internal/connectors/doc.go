// Package connectors holds protocol clients for remote mail stores.
// Each connector implements the driven session ports over a specific
// wire protocol.
package connectors
