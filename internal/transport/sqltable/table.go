// Package sqltable stores the user table in SQL: a local SQLite file or a
// PostgreSQL database. The schema is created by embedded goose migrations.
// The id column is a surrogate row handle; username carries no unique
// index, uniqueness is the credential store's job.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/dbx"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

type Table struct {
	db *sql.DB
	d  Dialect
	q  queries
}

// New wraps an already open database. No migrations are run.
func New(db *sql.DB, d Dialect) *Table {
	return &Table{db: db, d: d, q: d.queries()}
}

// Open connects to dsn, checks the connection and brings the schema up to
// date.
func Open(ctx context.Context, d Dialect, dsn string) (*Table, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if d.SingleConn {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}

	t := New(db, d)
	if err := t.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

// RunMigrations applies the embedded schema. Goose output is discarded;
// stdout belongs to the terminal.
func (t *Table) RunMigrations(ctx context.Context) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(t.d.Migrations)
	if err := goose.SetDialect(t.d.GooseDialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", t.d.GooseDialect, err)
	}
	if err := gooseUpContext(ctx, t.db, "."); err != nil {
		return fmt.Errorf("migrate %s: %w", t.d.Name, err)
	}
	return nil
}

func (t *Table) ReadAllRows(ctx context.Context) ([]directory.Row, error) {
	rows, err := t.db.QueryContext(ctx, t.q.selectAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []directory.Row
	for rows.Next() {
		var r directory.Row
		if err := rows.Scan(&r.Username, &r.Name, &r.Surname, &r.Email, &r.Password, &r.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return out, nil
}

func (t *Table) AppendRow(ctx context.Context, r directory.Row) error {
	_, err := t.db.ExecContext(ctx, t.q.insert, r.Username, r.Name, r.Surname, r.Email, r.Password, r.Role)
	if err != nil {
		return fmt.Errorf("failed to insert user[%s]: %w", r.Username, err)
	}
	return nil
}

// FindRow returns the first row, in insertion order, whose username
// normalizes to key.
func (t *Table) FindRow(ctx context.Context, key string) (directory.RowHandle, bool, error) {
	rows, err := t.db.QueryContext(ctx, t.q.listKeys)
	if err != nil {
		return directory.RowHandle{}, false, fmt.Errorf("failed to find user[%s]: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			username string
		)
		if err := rows.Scan(&id, &username); err != nil {
			return directory.RowHandle{}, false, fmt.Errorf("failed to scan user key: %w", err)
		}
		if common.Normalize(username) == key {
			return directory.RowHandle{ID: id, Key: key}, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return directory.RowHandle{}, false, fmt.Errorf("failed to find user[%s]: %w", key, err)
	}
	return directory.RowHandle{}, false, nil
}

// DeleteRow removes the row behind h if it still belongs to h.Key. A row
// that disappeared or was reused reports common.ErrUserNotFound.
func (t *Table) DeleteRow(ctx context.Context, h directory.RowHandle) error {
	return dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var username string
		err := tx.QueryRowContext(ctx, t.q.lockRow, h.ID).Scan(&username)
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read user row %d: %w", h.ID, err)
		}
		if h.Key != "" && common.Normalize(username) != h.Key {
			return common.ErrUserNotFound
		}

		n, err := dbx.ExecAffected(ctx, tx, t.q.deleteRow, h.ID)
		if err != nil {
			return fmt.Errorf("failed to delete user row %d: %w", h.ID, err)
		}
		if n == 0 {
			return common.ErrUserNotFound
		}
		return nil
	})
}

func (t *Table) Close() error {
	return t.db.Close()
}
