// Package postgres embeds the goose migrations for the PostgreSQL user table.
package postgres

import "embed"

//go:embed *.sql
var Migrations embed.FS
