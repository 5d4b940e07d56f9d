// Package migrations embeds the goose SQL migrations so the server binary
// can migrate its own database at startup.
package migrations

import "embed"

// FS holds the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
