package models

import (
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
)

// Habit represents a tracked activity and its per-day completion record
type Habit struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Color       string          `json:"color"`
	CreatedAt   time.Time       `json:"created_at"`
	Active      bool            `json:"active"`
	Completions map[string]bool `json:"completions"` // keyed by YYYY-MM-DD
	Timed       *TimedProgress  `json:"timed,omitempty"`
}

// TimedProgress holds the data only timed habits carry. A habit is timed
// exactly when its Timed field is non-nil.
type TimedProgress struct {
	TargetMinutes int            `json:"target_minutes"`
	Minutes       map[string]int `json:"minutes"` // accumulated minutes keyed by YYYY-MM-DD
}

// IsTimed reports whether completion is governed by elapsed minutes
func (h Habit) IsTimed() bool {
	return h.Timed != nil
}

// Target returns the configured daily duration, falling back to the default when unset
func (t *TimedProgress) Target() int {
	if t == nil || t.TargetMinutes <= 0 {
		return constants.DefaultTargetMinutes
	}
	return t.TargetMinutes
}

// MinutesOn returns the accumulated minutes for a day
func (t *TimedProgress) MinutesOn(day string) int {
	if t == nil || t.Minutes == nil {
		return 0
	}
	return t.Minutes[day]
}

// Clone returns a deep copy so callers can hand snapshots to the analytics engine
func (h Habit) Clone() Habit {
	c := h
	c.Completions = make(map[string]bool, len(h.Completions))
	for k, v := range h.Completions {
		c.Completions[k] = v
	}
	if h.Timed != nil {
		t := TimedProgress{
			TargetMinutes: h.Timed.TargetMinutes,
			Minutes:       make(map[string]int, len(h.Timed.Minutes)),
		}
		for k, v := range h.Timed.Minutes {
			t.Minutes[k] = v
		}
		c.Timed = &t
	}
	return c
}

// CloneHabits deep-copies a habit list
func CloneHabits(habits []Habit) []Habit {
	out := make([]Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}

// NewHabit returns an active habit with empty completion maps. When timed is set
// the habit tracks minutes; a non-positive targetMinutes falls back to the default target.
func NewHabit(id, name, description, color string, createdAt time.Time, timed bool, targetMinutes int) Habit {
	h := Habit{
		ID:          id,
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   createdAt,
		Active:      true,
		Completions: make(map[string]bool),
	}
	if timed {
		h.Timed = &TimedProgress{
			TargetMinutes: targetMinutes,
			Minutes:       make(map[string]int),
		}
	}
	return h
}
