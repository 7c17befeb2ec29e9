package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB is a database handle that knows its dialect. Queries are written with
// Postgres-style $N placeholders and rewritten for SQLite on the way out.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Connect opens and pings a database for the given driver name
// ("postgres" or "sqlite").
func Connect(driver, dsn string) (*DB, error) {
	switch Dialect(driver) {
	case Postgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect: sql open: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("connect: ping: %w", err)
		}
		return &DB{DB: sqlDB, Dialect: Postgres}, nil

	case SQLite:
		if dsn == "" {
			return nil, fmt.Errorf("connect: empty sqlite path")
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("connect: create db dir: %w", err)
		}
		sqlDB, err := sql.Open("sqlite", "file:"+dsn+"?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("connect: sql open: %w", err)
		}
		// a single writer avoids SQLITE_BUSY between pooled connections
		sqlDB.SetMaxOpenConns(1)
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("connect: ping: %w", err)
		}
		return &DB{DB: sqlDB, Dialect: SQLite}, nil

	default:
		return nil, fmt.Errorf("connect: unsupported driver %q", driver)
	}
}

// Open connects and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	d, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, d); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("open: %w", err)
	}
	return d, nil
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query, args = d.Rebind(query, args...)
	return d.DB.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query, args = d.Rebind(query, args...)
	return d.DB.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	query, args = d.Rebind(query, args...)
	return d.DB.QueryRowContext(ctx, query, args...)
}

// Rebind rewrites $N placeholders into positional ? markers for SQLite,
// reordering (and repeating) args to match.
func (d *DB) Rebind(query string, args ...any) (string, []any) {
	if d.Dialect != SQLite || !strings.Contains(query, "$") {
		return query, args
	}

	var b strings.Builder
	out := make([]any, 0, len(args))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
		out = append(out, args[n-1])
		i = j - 1
	}
	return b.String(), out
}
