package models

// HabitStats are the per-habit streak and rate figures
type HabitStats struct {
	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
	TotalCompletions int `json:"total_completions"`
	CompletionRate   int `json:"completion_rate"` // percent, rounded
}

// WeeklyTrend is the completion rate of one Sunday-start week
type WeeklyTrend struct {
	Week             string `json:"week"`       // e.g. "Mar 3"
	WeekStart        string `json:"week_start"` // YYYY-MM-DD
	CompletionRate   int    `json:"completion_rate"`
	TotalCompletions int    `json:"total_completions"`
	TotalPossible    int    `json:"total_possible"`
}

// MonthlyTrend is the completion rate of one calendar month
type MonthlyTrend struct {
	Month            string `json:"month"` // e.g. "Mar 2025"
	CompletionRate   int    `json:"completion_rate"`
	TotalCompletions int    `json:"total_completions"`
	TotalPossible    int    `json:"total_possible"`
}

// DayPerformance is the completion rate for one weekday
type DayPerformance struct {
	Day              string `json:"day"`
	DayIndex         int    `json:"day_index"` // 0=Sunday..6=Saturday
	CompletionRate   int    `json:"completion_rate"`
	TotalCompletions int    `json:"total_completions"`
	TotalPossible    int    `json:"total_possible"`
}

// HabitCorrelation relates the completion series of two habits
type HabitCorrelation struct {
	Habit1ID         string  `json:"habit1_id"`
	Habit1Name       string  `json:"habit1_name"`
	Habit1Color      string  `json:"habit1_color"`
	Habit2ID         string  `json:"habit2_id"`
	Habit2Name       string  `json:"habit2_name"`
	Habit2Color      string  `json:"habit2_color"`
	CorrelationScore float64 `json:"correlation_score"` // in [-1, 1], two decimals
	CoCompletions    int     `json:"co_completions"`
	TotalDays        int     `json:"total_days"`
}

// HeatmapDay is one cell of the completion heatmap
type HeatmapDay struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
	Level int    `json:"level"` // 0-4 intensity
}

// Overview summarizes today's progress across habits
type Overview struct {
	TotalHabits    int `json:"total_habits"`
	CompletedToday int `json:"completed_today"`
}
