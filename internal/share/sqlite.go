package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streaklit/internal/models"
)

const achievementColumns = `share_code, habit_name, habit_color, current_streak, longest_streak,
	total_completions, completion_rate, message, created_at, expires_at`

// SQLiteRepository stores snapshots in the local database file. It shares
// the store's connection and does not close it.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, a models.SharedAchievement) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_achievements (`+achievementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(share_code) DO NOTHING`,
		a.Code, a.HabitName, a.HabitColor, a.CurrentStreak, a.LongestStreak,
		a.TotalCompletions, a.CompletionRate, nullString(a.Message),
		a.CreatedAt.UTC().Format(time.RFC3339), a.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shared achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCodeTaken
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, code string) (models.SharedAchievement, error) {
	var (
		a                  models.SharedAchievement
		message            sql.NullString
		createdAt, expires string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+achievementColumns+" FROM shared_achievements WHERE share_code = ?", code,
	).Scan(&a.Code, &a.HabitName, &a.HabitColor, &a.CurrentStreak, &a.LongestStreak,
		&a.TotalCompletions, &a.CompletionRate, &message, &createdAt, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SharedAchievement{}, ErrNotFound
		}
		return models.SharedAchievement{}, fmt.Errorf("failed to load shared achievement: %w", err)
	}

	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.SharedAchievement{}, fmt.Errorf("invalid created_at for share %s: %w", code, err)
	}
	if a.ExpiresAt, err = time.Parse(time.RFC3339, expires); err != nil {
		return models.SharedAchievement{}, fmt.Errorf("invalid expires_at for share %s: %w", code, err)
	}
	if message.Valid {
		a.Message = &message.String
	}
	return a, nil
}

// DeleteExpired relies on RFC 3339 UTC strings sorting chronologically.
func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM shared_achievements WHERE expires_at <= ?", now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired shares: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Close() error {
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repository = (*SQLiteRepository)(nil)
