package analytics

import (
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/utils"
)

// WeeklyTrends returns one bucket per Sunday-start week for the last weeksBack
// weeks, oldest first. The current week ends today.
func WeeklyTrends(habits []models.Habit, weeksBack int, now time.Time) []models.WeeklyTrend {
	trends := []models.WeeklyTrend{}
	if len(habits) == 0 || weeksBack <= 0 {
		return trends
	}

	today := utils.CivilDate(now)
	ts := track(habits, now.Location())

	for i := weeksBack - 1; i >= 0; i-- {
		ref := today.AddDate(0, 0, -7*i)
		start := ref.AddDate(0, 0, -int(ref.Weekday()))
		end := start.AddDate(0, 0, 6)
		if end.After(today) {
			end = today
		}

		completions, possible := tally(ts, start, end)
		trends = append(trends, models.WeeklyTrend{
			Week:             start.Format(constants.WeekLabelFormat),
			WeekStart:        start.Format(constants.DateFormat),
			CompletionRate:   utils.Percent(completions, possible),
			TotalCompletions: completions,
			TotalPossible:    possible,
		})
	}

	return trends
}

// MonthlyTrends returns one bucket per calendar month for the last monthsBack
// months, oldest first. The current month ends today.
func MonthlyTrends(habits []models.Habit, monthsBack int, now time.Time) []models.MonthlyTrend {
	trends := []models.MonthlyTrend{}
	if len(habits) == 0 || monthsBack <= 0 {
		return trends
	}

	today := utils.CivilDate(now)
	ts := track(habits, now.Location())

	for i := monthsBack - 1; i >= 0; i-- {
		start := time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		if end.After(today) {
			end = today
		}

		completions, possible := tally(ts, start, end)
		trends = append(trends, models.MonthlyTrend{
			Month:            start.Format(constants.MonthLabelFormat),
			CompletionRate:   utils.Percent(completions, possible),
			TotalCompletions: completions,
			TotalPossible:    possible,
		})
	}

	return trends
}
