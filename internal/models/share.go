package models

import "time"

// SharedAchievement is an immutable, point-in-time snapshot of one habit's stats
// published under a short code
type SharedAchievement struct {
	Code             string    `json:"share_code"`
	HabitName        string    `json:"habit_name"`
	HabitColor       string    `json:"habit_color"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	CompletionRate   int       `json:"completion_rate"`
	Message          *string   `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Expired reports whether the snapshot is past its validity window at now
func (a SharedAchievement) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
