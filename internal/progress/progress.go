// Package progress decides when a habit counts as done on a given day.
//
// Three notions of "done" coexist and must not be merged:
//   - the raw stored flag (Habit.Completions), used for streaks and totals;
//   - IsValidCompletion, which additionally requires MinTimedMinutes of engagement
//     for timed habits and feeds every window aggregation;
//   - the live-timer rule in LogMinutes, which marks a day complete once the
//     habit's own target duration is reached.
package progress

import (
	"fmt"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
)

// Update is a classification emitted for the storage layer to apply.
// Minutes is only meaningful when HasMinutes is set.
type Update struct {
	HabitID    string
	Day        string
	Completed  bool
	Minutes    int
	HasMinutes bool
}

// IsValidCompletion reports whether the habit counts as completed on day for analytics.
func IsValidCompletion(h models.Habit, day string) bool {
	if !h.Completions[day] {
		return false
	}
	if !h.IsTimed() {
		return true
	}
	return h.Timed.MinutesOn(day) >= constants.MinTimedMinutes
}

// Toggle flips the raw completion flag for day.
func Toggle(h models.Habit, day string) Update {
	return Update{
		HabitID:   h.ID,
		Day:       day,
		Completed: !h.Completions[day],
	}
}

// Mark sets the raw completion flag for day.
func Mark(h models.Habit, day string, done bool) Update {
	return Update{HabitID: h.ID, Day: day, Completed: done}
}

// LogMinutes adds elapsed minutes to a timed habit's day. The day becomes complete
// once the accumulated total reaches the habit's target; an already-complete day
// stays complete.
func LogMinutes(h models.Habit, day string, minutes int) (Update, error) {
	if !h.IsTimed() {
		return Update{}, fmt.Errorf("habit %q is not timed", h.Name)
	}
	if minutes <= 0 {
		return Update{}, fmt.Errorf("minutes must be positive, got %d", minutes)
	}

	total := h.Timed.MinutesOn(day) + minutes
	return Update{
		HabitID:    h.ID,
		Day:        day,
		Completed:  h.Completions[day] || total >= h.Timed.Target(),
		Minutes:    total,
		HasMinutes: true,
	}, nil
}

// Apply writes an update into h in place. Storage providers use it so the
// in-memory and persisted forms stay identical.
func Apply(h *models.Habit, u Update) {
	if h.Completions == nil {
		h.Completions = make(map[string]bool)
	}
	h.Completions[u.Day] = u.Completed
	if u.HasMinutes && h.Timed != nil {
		if h.Timed.Minutes == nil {
			h.Timed.Minutes = make(map[string]int)
		}
		h.Timed.Minutes[u.Day] = u.Minutes
	}
}
