package sqltable

import (
	"embed"
	"fmt"
	"strings"

	pgmigrations "github.com/dmitrijs2005/pricegate/internal/migrations/postgres"
	sqlitemigrations "github.com/dmitrijs2005/pricegate/internal/migrations/sqlite"
)

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	Name         string
	Driver       string
	GooseDialect string
	Migrations   embed.FS
	// Numbered placeholders ($1, $2) instead of "?".
	Numbered bool
	// SQLite in-memory databases vanish when their connection closes, so
	// the pool is pinned to one connection.
	SingleConn bool
}

var (
	SQLite = Dialect{
		Name:         "sqlite",
		Driver:       "sqlite",
		GooseDialect: "sqlite3",
		Migrations:   sqlitemigrations.Migrations,
		SingleConn:   true,
	}
	Postgres = Dialect{
		Name:         "postgres",
		Driver:       "pgx",
		GooseDialect: "pgx",
		Migrations:   pgmigrations.Migrations,
		Numbered:     true,
	}
)

// placeholders returns n comma separated bind markers.
func (d Dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.bind(i + 1)
	}
	return strings.Join(parts, ", ")
}

func (d Dialect) bind(i int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

type queries struct {
	selectAll string
	insert    string
	listKeys  string
	lockRow   string
	deleteRow string
}

func (d Dialect) queries() queries {
	return queries{
		selectAll: `SELECT username, nombre, apellido, email, password, rol FROM users ORDER BY id`,
		insert: `INSERT INTO users (username, nombre, apellido, email, password, rol) VALUES (` +
			d.placeholders(6) + `)`,
		// Keys are matched in Go: SQL TRIM only strips spaces.
		listKeys:  `SELECT id, username FROM users ORDER BY id`,
		lockRow:   `SELECT username FROM users WHERE id = ` + d.bind(1),
		deleteRow: `DELETE FROM users WHERE id = ` + d.bind(1),
	}
}
