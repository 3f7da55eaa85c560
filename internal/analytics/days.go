package analytics

import (
	"sort"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
	"github.com/julianstephens/streaklit/internal/utils"
)

// DayPerformance buckets the trailing weeksBack*7 days ending today by weekday.
// The result always has seven entries, Sunday first, unless habits is empty.
func DayPerformance(habits []models.Habit, weeksBack int, now time.Time) []models.DayPerformance {
	if len(habits) == 0 || weeksBack <= 0 {
		return []models.DayPerformance{}
	}

	today := utils.CivilDate(now)
	ts := track(habits, now.Location())

	var completions, possible [7]int
	eachDay(windowStart(today, weeksBack*7), today, func(day time.Time, key string) {
		idx := int(day.Weekday())
		for _, t := range ts {
			if !t.eligible(key) {
				continue
			}
			possible[idx]++
			if progress.IsValidCompletion(t.habit, key) {
				completions[idx]++
			}
		}
	})

	out := make([]models.DayPerformance, 7)
	for i := range out {
		out[i] = models.DayPerformance{
			Day:              constants.DayNames[i],
			DayIndex:         i,
			CompletionRate:   utils.Percent(completions[i], possible[i]),
			TotalCompletions: completions[i],
			TotalPossible:    possible[i],
		}
	}
	return out
}

// BestPerformingDays orders days by completion rate, highest first.
// Ties keep weekday order.
func BestPerformingDays(days []models.DayPerformance) []models.DayPerformance {
	out := append([]models.DayPerformance(nil), days...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionRate > out[j].CompletionRate
	})
	return out
}

// WorstPerformingDays orders days by completion rate, lowest first.
// Ties keep weekday order.
func WorstPerformingDays(days []models.DayPerformance) []models.DayPerformance {
	out := append([]models.DayPerformance(nil), days...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionRate < out[j].CompletionRate
	})
	return out
}
