// Package migrations embeds the SQL migrations for the Postgres-backed store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
