// Package analytics aggregates completion records across habits over trailing
// calendar windows: weekly and monthly trends, weekday performance, pairwise
// correlations and the completion heatmap.
//
// Every function is pure. The caller passes a snapshot of habits and the
// current instant; the location of now defines the calendar used for day keys.
package analytics

import (
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
	"github.com/julianstephens/streaklit/internal/utils"
)

// tracked pairs a habit with the key of its creation day.
type tracked struct {
	habit   models.Habit
	created string
}

func track(habits []models.Habit, loc *time.Location) []tracked {
	out := make([]tracked, len(habits))
	for i, h := range habits {
		out[i] = tracked{habit: h, created: utils.DayKey(h.CreatedAt.In(loc))}
	}
	return out
}

// eligible reports whether day is on or after the habit's creation day.
func (t tracked) eligible(day string) bool {
	return day >= t.created
}

// eachDay calls fn for every civil date from start to end inclusive.
func eachDay(start, end time.Time, fn func(day time.Time, key string)) {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d, d.Format(constants.DateFormat))
	}
}

// tally counts valid completions and eligible habit-days between start and end.
func tally(habits []tracked, start, end time.Time) (completions, possible int) {
	eachDay(start, end, func(_ time.Time, key string) {
		for _, t := range habits {
			if !t.eligible(key) {
				continue
			}
			possible++
			if progress.IsValidCompletion(t.habit, key) {
				completions++
			}
		}
	})
	return completions, possible
}

// windowStart returns the first civil date of the days-long window ending today.
func windowStart(today time.Time, days int) time.Time {
	return today.AddDate(0, 0, -(days - 1))
}
