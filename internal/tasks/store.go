package tasks

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

const taskColumns = `id, text, done, created_at, source`

// Store persists tasks. It holds no locks; the database serialises writes.
type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d, now: time.Now}
}

// WithClock overrides the time source used for server-assigned timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// List returns every task, newest first.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, apperr.Persistence("list tasks", err)
	}
	return scanTasks("list tasks", rows)
}

// ListCreatedSince returns tasks created at or after since, newest first.
func (s *Store) ListCreatedSince(ctx context.Context, since time.Time) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC
	`, db.NewTimestamp(since))
	if err != nil {
		return nil, apperr.Persistence("list tasks since", err)
	}
	return scanTasks("list tasks since", rows)
}

func (s *Store) Get(ctx context.Context, id int64) (Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, apperr.NotFound("get task", "task not found")
	}
	if err != nil {
		return Task{}, apperr.Persistence("get task", err)
	}
	return t, nil
}

// Create inserts a task and re-reads it by id.
func (s *Store) Create(ctx context.Context, in NewTask) (Task, error) {
	if strings.TrimSpace(in.Text) == "" {
		return Task{}, apperr.Validation("create task", "text is required")
	}

	created := s.now()
	if in.CreatedAt != nil {
		created = *in.CreatedAt
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = SourceWeb
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (text, done, created_at, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, in.Text, in.Done, db.NewTimestamp(created), source).Scan(&id)
	if err != nil {
		return Task{}, apperr.Persistence("create task", err)
	}

	return s.Get(ctx, id)
}

// Update applies the supplied fields only. Unknown ids yield a not-found error.
func (s *Store) Update(ctx context.Context, id int64, p Patch) (Task, error) {
	if p.Empty() {
		return Task{}, apperr.Validation("update task", "Nothing to update")
	}
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return Task{}, apperr.Validation("update task", "text must not be empty")
	}

	var (
		sets []string
		args []any
	)
	if p.Text != nil {
		args = append(args, *p.Text)
		sets = append(sets, "text = "+placeholder(len(args)))
	}
	if p.Done != nil {
		args = append(args, *p.Done)
		sets = append(sets, "done = "+placeholder(len(args)))
	}
	args = append(args, id)

	row := s.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET `+strings.Join(sets, ", ")+`
		WHERE id = `+placeholder(len(args))+`
		RETURNING `+taskColumns,
		args...,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, apperr.NotFound("update task", "task not found")
	}
	if err != nil {
		return Task{}, apperr.Persistence("update task", err)
	}
	return t, nil
}

// Delete removes the task if present. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return apperr.Persistence("delete task", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t       Task
		created db.Timestamp
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Done, &created, &t.Source); err != nil {
		return Task{}, err
	}
	t.CreatedAt = created.Time
	return t, nil
}

func scanTasks(op string, rows *sql.Rows) ([]Task, error) {
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Persistence(op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return result, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
