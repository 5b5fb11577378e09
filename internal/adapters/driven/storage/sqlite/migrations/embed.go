// Package migrations holds the schema migration files for the header
// cache database.
package migrations

import "embed"

// FS exposes the .sql migration files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
