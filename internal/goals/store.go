package goals

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/db"
)

type Store struct {
	db       *db.DB
	fallback int
	now      func() time.Time
}

// NewStore returns a goal store. fallback is reported until a goal is saved.
func NewStore(d *db.DB, fallback int) *Store {
	if fallback < 1 {
		fallback = DefaultDailyGoal
	}
	return &Store{db: d, fallback: fallback, now: time.Now}
}

func (s *Store) Get(ctx context.Context) (Goal, error) {
	var (
		goal    int
		updated db.Timestamp
	)
	err := s.db.QueryRowContext(ctx, `SELECT daily_goal, updated_at FROM goals WHERE id = 1`).Scan(&goal, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return newGoal(s.fallback, time.Time{}), nil
	}
	if err != nil {
		return Goal{}, apperr.Persistence("get goal", err)
	}
	return newGoal(goal, updated.Time), nil
}

// DailyGoal satisfies tasks.GoalSource.
func (s *Store) DailyGoal(ctx context.Context) (int, error) {
	g, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return g.DailyGoal, nil
}

// Set stores the goal, clamped to at least one.
func (s *Store) Set(ctx context.Context, dailyGoal int) (Goal, error) {
	dailyGoal = max(1, dailyGoal)
	now := db.NewTimestamp(s.now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, daily_goal, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			daily_goal = EXCLUDED.daily_goal,
			updated_at = EXCLUDED.updated_at
	`, dailyGoal, now)
	if err != nil {
		return Goal{}, apperr.Persistence("set goal", err)
	}
	return newGoal(dailyGoal, now.Time), nil
}

func newGoal(daily int, updated time.Time) Goal {
	return Goal{DailyGoal: daily, WeeklyGoal: daily * 7, UpdatedAt: updated}
}
