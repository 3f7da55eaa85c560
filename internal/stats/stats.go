package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/utils"
)

// Tier buckets a completion rate for display
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierLow       Tier = "low"
)

// Calculate derives streaks, total and completion rate for one habit as of now.
// Streaks and the total use the raw completion flag; the timed minimum is not applied here.
func Calculate(h models.Habit, now time.Time) models.HabitStats {
	dates := completedDates(h)
	today := utils.CivilDate(now)

	var st models.HabitStats
	st.TotalCompletions = len(dates)

	if len(dates) > 0 {
		gap := utils.DaysBetween(dates[0], today)
		// yesterday keeps the streak alive until today is done; a key after
		// today (a timezone moved west) still counts as live
		if gap <= 1 {
			st.CurrentStreak = 1
			for i := 1; i < len(dates); i++ {
				if utils.DaysBetween(dates[i], dates[i-1]) != 1 {
					break
				}
				st.CurrentStreak++
			}
		}
	}

	run := 0
	for i := range dates {
		if i > 0 && utils.DaysBetween(dates[i], dates[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	daysSinceCreation := utils.DaysBetween(h.CreatedAt.In(now.Location()), today)
	st.CompletionRate = utils.Percent(st.TotalCompletions, daysSinceCreation+1)

	return st
}

// completedDates returns the civil dates of every raw completion, most recent first.
// Keys that do not parse are ignored.
func completedDates(h models.Habit) []time.Time {
	keys := make([]string, 0, len(h.Completions))
	for day, done := range h.Completions {
		if done {
			keys = append(keys, day)
		}
	}
	// zero-padded keys sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := utils.ParseDayKey(k)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// IsCompletedToday reports whether the raw flag is set for today's key.
func IsCompletedToday(h models.Habit, now time.Time) bool {
	return h.Completions[utils.DayKey(now)]
}

// RateTier maps a completion rate to its display tier.
func RateTier(rate int) Tier {
	switch {
	case rate >= constants.TierExcellentMin:
		return TierExcellent
	case rate >= constants.TierGoodMin:
		return TierGood
	case rate >= constants.TierFairMin:
		return TierFair
	default:
		return TierLow
	}
}

// Milestone returns the largest celebrated streak length reached, or 0.
func Milestone(streak int) int {
	for _, m := range constants.StreakMilestones {
		if streak >= m {
			return m
		}
	}
	return 0
}
