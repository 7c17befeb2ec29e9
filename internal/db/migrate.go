package db

import (
	"context"
	"fmt"
	"strings"
)

// SchemaVersion is the latest schema version known to this binary.
const SchemaVersion = 3

type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "tasks and journal entries",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id {{id}},
				text TEXT NOT NULL,
				done {{bool}} NOT NULL DEFAULT FALSE,
				created_at {{ts}} NOT NULL,
				source TEXT NOT NULL DEFAULT 'web'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at)`,
			`CREATE TABLE IF NOT EXISTS journal_entries (
				id {{id}},
				date_key TEXT NOT NULL UNIQUE,
				mood INTEGER NULL,
				note TEXT NULL,
				created_at {{ts}} NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "analytics events",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS analytics_events (
				id {{id}},
				event_name TEXT NOT NULL,
				event_time {{ts}} NOT NULL,
				session_id TEXT NULL,
				platform TEXT NOT NULL,
				app_version TEXT NOT NULL DEFAULT '',
				device_locale TEXT NULL,
				source_event_key TEXT NULL UNIQUE,
				properties {{json}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_analytics_events_name_time ON analytics_events(event_name, event_time)`,
		},
	},
	{
		version: 3,
		name:    "daily goal",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS goals (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				daily_goal INTEGER NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
		},
	},
}

func (d Dialect) ddl(stmt string) string {
	var r *strings.Replacer
	if d == Postgres {
		r = strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{bool}}", "BOOLEAN",
			"{{ts}}", "TIMESTAMPTZ",
			"{{json}}", "JSONB",
		)
	} else {
		r = strings.NewReplacer(
			"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{bool}}", "INTEGER",
			"{{ts}}", "TEXT",
			"{{json}}", "TEXT",
		)
	}
	return r.Replace(stmt)
}

// CurrentVersion reports the highest applied schema version.
func CurrentVersion(ctx context.Context, d *DB) (int, error) {
	if _, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("migrate: create schema_migrations: %w", err)
	}
	var current int
	if err := d.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("migrate: read current version: %w", err)
	}
	return current, nil
}

// Migrate brings the schema up to SchemaVersion, one transaction per step.
func Migrate(ctx context.Context, d *DB) error {
	if d == nil || d.DB == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	current, err := CurrentVersion(ctx, d)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate v%d: begin transaction: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, d.Dialect.ddl(stmt)); err != nil {
			return fmt.Errorf("migrate v%d (%s): %w", m.version, m.name, err)
		}
	}

	q, args := d.Rebind(`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("migrate v%d: record schema version: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate v%d: commit transaction: %w", m.version, err)
	}
	return nil
}
