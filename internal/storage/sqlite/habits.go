package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
	"github.com/julianstephens/streaklit/internal/storage"
)

const habitColumns = "id, name, description, color, created_at, active, is_timed, target_minutes"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var (
		h         models.Habit
		createdAt string
		active    bool
		isTimed   bool
		target    int
	)
	if err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Color, &createdAt, &active, &isTimed, &target); err != nil {
		return models.Habit{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("invalid created_at for habit %s: %w", h.ID, err)
	}
	h.CreatedAt = ts
	h.Active = active
	h.Completions = make(map[string]bool)
	if isTimed {
		h.Timed = &models.TimedProgress{TargetMinutes: target, Minutes: make(map[string]int)}
	}
	return h, nil
}

// attachDays fills Completions and Minutes for the given habits. An empty
// id loads days for every habit.
func (s *Store) attachDays(habits []models.Habit, id string) error {
	query := "SELECT habit_id, day, completed, minutes FROM habit_days"
	var args []any
	if id != "" {
		query += " WHERE habit_id = ?"
		args = append(args, id)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[string]*models.Habit, len(habits))
	for i := range habits {
		byID[habits[i].ID] = &habits[i]
	}

	for rows.Next() {
		var (
			habitID, day string
			completed    bool
			minutes      sql.NullInt64
		)
		if err := rows.Scan(&habitID, &day, &completed, &minutes); err != nil {
			return err
		}
		h, ok := byID[habitID]
		if !ok {
			continue
		}
		h.Completions[day] = completed
		if minutes.Valid && h.Timed != nil {
			h.Timed.Minutes[day] = int(minutes.Int64)
		}
	}
	return rows.Err()
}

func (s *Store) getOne(query string, arg any) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, storage.ErrNotFound
		}
		return models.Habit{}, err
	}
	habits := []models.Habit{h}
	if err := s.attachDays(habits, h.ID); err != nil {
		return models.Habit{}, err
	}
	return habits[0], nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	return s.getOne("SELECT "+habitColumns+" FROM habits WHERE id = ?", id)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	return s.getOne("SELECT "+habitColumns+" FROM habits WHERE name = ? COLLATE NOCASE", name)
}

func (s *Store) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY position, created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.attachDays(habits, ""); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *Store) LoadHabits() ([]models.Habit, error) {
	return s.GetAllHabits(true)
}

func (s *Store) nameTaken(tx *sql.Tx, name, exceptID string) (bool, error) {
	var count int
	err := tx.QueryRow("SELECT COUNT(*) FROM habits WHERE name = ? COLLATE NOCASE AND id != ?", name, exceptID).Scan(&count)
	return count > 0, err
}

func insertHabit(ex execer, h models.Habit, position int) error {
	target := 0
	if h.Timed != nil {
		target = h.Timed.TargetMinutes
	}
	_, err := ex.Exec(`
		INSERT INTO habits (id, name, description, color, created_at, active, is_timed, target_minutes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Description, h.Color, h.CreatedAt.Format(time.RFC3339Nano),
		h.Active, h.IsTimed(), target, position,
	)
	return err
}

// insertDays writes one row per day that has a flag or a minutes entry.
func insertDays(ex execer, h models.Habit) error {
	days := make(map[string]struct{}, len(h.Completions))
	for day := range h.Completions {
		days[day] = struct{}{}
	}
	if h.Timed != nil {
		for day := range h.Timed.Minutes {
			days[day] = struct{}{}
		}
	}

	for day := range days {
		var minutes sql.NullInt64
		if h.Timed != nil {
			if m, ok := h.Timed.Minutes[day]; ok {
				minutes = sql.NullInt64{Int64: int64(m), Valid: true}
			}
		}
		if _, err := ex.Exec(
			"INSERT INTO habit_days (habit_id, day, completed, minutes) VALUES (?, ?, ?, ?)",
			h.ID, day, h.Completions[day], minutes,
		); err != nil {
			return fmt.Errorf("failed to save day %s for habit %s: %w", day, h.ID, err)
		}
	}
	return nil
}

func (s *Store) AddHabit(h models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	taken, err := s.nameTaken(tx, h.Name, h.ID)
	if err != nil {
		return err
	}
	if taken {
		return storage.ErrDuplicateName
	}

	var position int
	if err := tx.QueryRow("SELECT COALESCE(MAX(position), -1) + 1 FROM habits").Scan(&position); err != nil {
		return err
	}
	if err := insertHabit(tx, h, position); err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	if err := insertDays(tx, h); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateHabit rewrites the habit's metadata and replaces all of its days.
func (s *Store) UpdateHabit(h models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	taken, err := s.nameTaken(tx, h.Name, h.ID)
	if err != nil {
		return err
	}
	if taken {
		return storage.ErrDuplicateName
	}

	target := 0
	if h.Timed != nil {
		target = h.Timed.TargetMinutes
	}
	res, err := tx.Exec(`
		UPDATE habits
		SET name = ?, description = ?, color = ?, created_at = ?, active = ?, is_timed = ?, target_minutes = ?
		WHERE id = ?`,
		h.Name, h.Description, h.Color, h.CreatedAt.Format(time.RFC3339Nano), h.Active, h.IsTimed(), target, h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.Exec("DELETE FROM habit_days WHERE habit_id = ?", h.ID); err != nil {
		return err
	}
	if err := insertDays(tx, h); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM habit_days WHERE habit_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return storage.ErrNotFound
	}
	return tx.Commit()
}

// SaveHabits replaces every stored habit with the given list, in order.
func (s *Store) SaveHabits(habits []models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM habit_days"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM habits"); err != nil {
		return err
	}
	for i, h := range habits {
		if err := insertHabit(tx, h, i); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.Name, err)
		}
		if err := insertDays(tx, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ApplyUpdate upserts a single day. Minutes are written only for timed
// habits and only when the update carries them.
func (s *Store) ApplyUpdate(u progress.Update) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var isTimed bool
	if err := tx.QueryRow("SELECT is_timed FROM habits WHERE id = ?", u.HabitID).Scan(&isTimed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}

	var minutes sql.NullInt64
	if u.HasMinutes && isTimed {
		minutes = sql.NullInt64{Int64: int64(u.Minutes), Valid: true}
	}
	if _, err := tx.Exec(`
		INSERT INTO habit_days (habit_id, day, completed, minutes) VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			minutes = COALESCE(excluded.minutes, habit_days.minutes)`,
		u.HabitID, u.Day, u.Completed, minutes,
	); err != nil {
		return fmt.Errorf("failed to record progress: %w", err)
	}
	return tx.Commit()
}
