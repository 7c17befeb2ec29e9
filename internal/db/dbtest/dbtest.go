// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"mood-journal-backend/internal/db"
)

// Open returns a migrated SQLite database under t.TempDir, closed on cleanup.
func Open(t testing.TB) *db.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "moodjournal.db")
	d, err := db.Open(context.Background(), string(db.SQLite), path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
