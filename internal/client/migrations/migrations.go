// Package migrations embeds the goose migrations for the client-side
// SQLite session database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
