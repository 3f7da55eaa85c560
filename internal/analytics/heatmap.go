package analytics

import (
	"time"

	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/stats"
	"github.com/julianstephens/streaklit/internal/utils"
)

const maxHeatLevel = 4

// Heatmap counts raw completions per day over the trailing weeks*7 days ending today,
// oldest first.
func Heatmap(habits []models.Habit, weeks int, now time.Time) []models.HeatmapDay {
	out := []models.HeatmapDay{}
	if weeks <= 0 {
		return out
	}

	today := utils.CivilDate(now)
	eachDay(windowStart(today, weeks*7), today, func(_ time.Time, key string) {
		count := 0
		for _, h := range habits {
			if h.Completions[key] {
				count++
			}
		}
		out = append(out, models.HeatmapDay{Day: key, Count: count, Level: min(count, maxHeatLevel)})
	})
	return out
}

// Summarize reports how many habits are done today.
func Summarize(habits []models.Habit, now time.Time) models.Overview {
	ov := models.Overview{TotalHabits: len(habits)}
	for _, h := range habits {
		if stats.IsCompletedToday(h, now) {
			ov.CompletedToday++
		}
	}
	return ov
}
