package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
)

var (
	// ErrNotFound is returned when a habit lookup matches nothing.
	ErrNotFound = errors.New("habit not found")
	// ErrDuplicateName is returned when a habit name is already taken.
	ErrDuplicateName = errors.New("a habit with that name already exists")
	// ErrNotInitialized is returned by Load before Init has ever run.
	ErrNotInitialized = fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
)

// DefaultSettings returns the settings written by Init.
func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:   constants.DefaultTimezone,
		WeeksBack:  constants.DefaultWeeksBack,
		MonthsBack: constants.DefaultMonthsBack,
	}
}

// NormalizeSettings fills zero values with defaults.
func NormalizeSettings(s models.Settings) models.Settings {
	if s.Timezone == "" {
		s.Timezone = constants.DefaultTimezone
	}
	if s.WeeksBack <= 0 || s.WeeksBack > constants.MaxWeeksBack {
		s.WeeksBack = constants.DefaultWeeksBack
	}
	if s.MonthsBack <= 0 || s.MonthsBack > constants.MaxMonthsBack {
		s.MonthsBack = constants.DefaultMonthsBack
	}
	return s
}
