package storage

import (
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
)

// Provider is the persistence contract shared by the SQLite and JSON
// backends. Habits come back in insertion order.
type Provider interface {
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	LoadHabits() ([]models.Habit, error)
	SaveHabits([]models.Habit) error

	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeInactive bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error

	ApplyUpdate(progress.Update) error
}
