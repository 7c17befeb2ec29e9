package journal

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/db"
)

const entryColumns = `id, date_key, mood, note, created_at, updated_at`

type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d, now: time.Now}
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Upsert writes the entry for in.DateKey in one statement. The last write
// wins; created_at keeps its first value.
func (s *Store) Upsert(ctx context.Context, in Save) (Entry, error) {
	key, err := ParseDateKey(in.DateKey)
	if err != nil {
		return Entry{}, err
	}
	if in.Mood != 0 && (in.Mood < MinMood || in.Mood > MaxMood) {
		return Entry{}, apperr.Validation("save journal", "mood must be between 1 and 5")
	}

	var mood sql.NullInt64
	if in.Mood != 0 {
		mood = sql.NullInt64{Int64: int64(in.Mood), Valid: true}
	}
	var note sql.NullString
	if in.Note != "" {
		note = sql.NullString{String: in.Note, Valid: true}
	}
	now := db.NewTimestamp(s.now())

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO journal_entries (date_key, mood, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (date_key) DO UPDATE SET
			mood = EXCLUDED.mood,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING `+entryColumns,
		key, mood, note, now,
	)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, apperr.Persistence("save journal", err)
	}
	return e, nil
}

// Fetch returns the entry for dateKey.
func (s *Store) Fetch(ctx context.Context, dateKey string) (Entry, error) {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return Entry{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE date_key = $1`, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, apperr.NotFound("fetch journal", "journal entry not found")
	}
	if err != nil {
		return Entry{}, apperr.Persistence("fetch journal", err)
	}
	return e, nil
}

// List returns entries with from <= date_key <= to, oldest first. Either
// bound may be empty.
func (s *Store) List(ctx context.Context, from, to string) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	for _, b := range []struct {
		val string
		op  string
	}{{from, ">="}, {to, "<="}} {
		if strings.TrimSpace(b.val) == "" {
			continue
		}
		key, err := ParseDateKey(b.val)
		if err != nil {
			return nil, err
		}
		args = append(args, key)
		where = append(where, "date_key "+b.op+" "+placeholder(len(args)))
	}

	q := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date_key ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Persistence("list journal", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, apperr.Persistence("list journal", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list journal", err)
	}
	return out, nil
}

// ParseDateKey validates a YYYY-MM-DD key and returns it in canonical form.
func ParseDateKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("parse date key", "dateKey is required")
	}
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", apperr.Validation("parse date key", "dateKey must be YYYY-MM-DD")
	}
	return t.Format(dateKeyLayout), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e                Entry
		mood             sql.NullInt64
		note             sql.NullString
		created, updated db.Timestamp
	)
	if err := sc.Scan(&e.ID, &e.DateKey, &mood, &note, &created, &updated); err != nil {
		return Entry{}, err
	}
	if mood.Valid {
		m := int(mood.Int64)
		e.Mood = &m
	}
	if note.Valid {
		e.Note = &note.String
	}
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time
	return e, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
