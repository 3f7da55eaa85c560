package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
	"github.com/julianstephens/streaklit/internal/utils"
)

// Strength labels a correlation score for display
type Strength string

const (
	StrengthStrong      Strength = "strong"
	StrengthModerate    Strength = "moderate"
	StrengthNeutral     Strength = "neutral"
	StrengthWeakInverse Strength = "weak-inverse"
	StrengthInverse     Strength = "inverse"
)

// series is one habit's eligibility and valid-completion flags over the window.
type series struct {
	eligible []bool
	done     []bool
}

// Correlations scores every unordered pair of habits over the trailing
// weeksBack*7 days. Only days on or after both creation days count. Pairs
// where either habit has no valid completion in the window are omitted.
// The result is ordered by absolute score, strongest first; ties keep pair order.
func Correlations(habits []models.Habit, weeksBack int, now time.Time) []models.HabitCorrelation {
	out := []models.HabitCorrelation{}
	if len(habits) < 2 || weeksBack <= 0 {
		return out
	}

	today := utils.CivilDate(now)
	ts := track(habits, now.Location())

	var keys []string
	eachDay(windowStart(today, weeksBack*7), today, func(_ time.Time, key string) {
		keys = append(keys, key)
	})

	all := make([]series, len(ts))
	for i, t := range ts {
		s := series{eligible: make([]bool, len(keys)), done: make([]bool, len(keys))}
		for d, key := range keys {
			s.eligible[d] = t.eligible(key)
			s.done[d] = s.eligible[d] && progress.IsValidCompletion(t.habit, key)
		}
		all[i] = s
	}

	for i := 0; i < len(ts); i++ {
		for j := i + 1; j < len(ts); j++ {
			var co, c1, c2, n int
			for d := range keys {
				if !all[i].eligible[d] || !all[j].eligible[d] {
					continue
				}
				n++
				a, b := all[i].done[d], all[j].done[d]
				if a {
					c1++
				}
				if b {
					c2++
				}
				if a && b {
					co++
				}
			}

			if n == 0 || c1 == 0 || c2 == 0 {
				continue
			}

			h1, h2 := ts[i].habit, ts[j].habit
			out = append(out, models.HabitCorrelation{
				Habit1ID:         h1.ID,
				Habit1Name:       h1.Name,
				Habit1Color:      h1.Color,
				Habit2ID:         h2.ID,
				Habit2Name:       h2.Name,
				Habit2Color:      h2.Color,
				CorrelationScore: Score(co, c1, c2, n),
				CoCompletions:    co,
				TotalDays:        n,
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].CorrelationScore) > math.Abs(out[b].CorrelationScore)
	})
	return out
}

// Score standardizes the co-completion residual against independence and
// flattens it into [-1, 1] with two decimals. n must be positive.
func Score(co, c1, c2, n int) float64 {
	total := float64(n)
	p1 := float64(c1) / total
	p2 := float64(c2) / total
	expected := p1 * p2 * total

	raw := 0.0
	// a habit done on every eligible day has no variance; treat as uncorrelated
	if variance := expected * (1 - p1) * (1 - p2); expected > 0 && variance > 0 {
		raw = (float64(co) - expected) / math.Sqrt(variance)
	}

	normalized := math.Max(-1, math.Min(1, raw/constants.CorrelationScale))
	return utils.RoundHalfUp(normalized*100) / 100
}

// ClassifyStrength maps a score to its display label.
func ClassifyStrength(score float64) Strength {
	switch {
	case score > constants.CorrelationStrong:
		return StrengthStrong
	case score > constants.CorrelationModerate:
		return StrengthModerate
	case score < -constants.CorrelationStrong:
		return StrengthInverse
	case score < -constants.CorrelationModerate:
		return StrengthWeakInverse
	default:
		return StrengthNeutral
	}
}
