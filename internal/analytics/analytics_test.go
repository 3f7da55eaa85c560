package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/streaklit/internal/models"
)

// now is Wednesday 2025-03-12
var now = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(9 * time.Hour)
}

func habit(id, created string, days ...string) models.Habit {
	h := models.NewHabit(id, "habit-"+id, "", "#ef4444", date(created), false, 0)
	for _, d := range days {
		h.Completions[d] = true
	}
	return h
}

func offsetKey(n int) string {
	return now.AddDate(0, 0, n).Format("2006-01-02")
}

func TestWeeklyTrends(t *testing.T) {
	a := habit("a", "2025-03-05", "2025-03-05", "2025-03-06", "2025-03-09", "2025-03-10", "2025-03-12")
	b := habit("b", "2025-03-10", "2025-03-11")

	got := WeeklyTrends([]models.Habit{a, b}, 2, now)
	want := []models.WeeklyTrend{
		{Week: "Mar 2", WeekStart: "2025-03-02", CompletionRate: 50, TotalCompletions: 2, TotalPossible: 4},
		{Week: "Mar 9", WeekStart: "2025-03-09", CompletionRate: 57, TotalCompletions: 4, TotalPossible: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WeeklyTrends() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestWeeklyTrendsDefaultWindow(t *testing.T) {
	a := habit("a", "2024-01-01")
	got := WeeklyTrends([]models.Habit{a}, 12, now)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if got[11].WeekStart != "2025-03-09" {
		t.Errorf("last week start = %s, want 2025-03-09", got[11].WeekStart)
	}
	if got[0].WeekStart != "2024-12-22" {
		t.Errorf("first week start = %s, want 2024-12-22", got[0].WeekStart)
	}
	for _, w := range got[:11] {
		if w.TotalPossible != 7 {
			t.Errorf("week %s possible = %d, want 7", w.WeekStart, w.TotalPossible)
		}
	}
	if got[11].TotalPossible != 4 {
		t.Errorf("current week possible = %d, want 4", got[11].TotalPossible)
	}
}

func TestWeeklyTrendsTimedMinimum(t *testing.T) {
	h := models.NewHabit("t", "Yoga", "", "#06b6d4", date("2025-03-09"), true, 60)
	h.Completions["2025-03-09"] = true
	h.Timed.Minutes["2025-03-09"] = 10
	h.Completions["2025-03-10"] = true
	h.Timed.Minutes["2025-03-10"] = 15

	got := WeeklyTrends([]models.Habit{h}, 1, now)
	if got[0].TotalCompletions != 1 || got[0].TotalPossible != 4 || got[0].CompletionRate != 25 {
		t.Errorf("WeeklyTrends() = %+v", got[0])
	}
}

func TestMonthlyTrends(t *testing.T) {
	a := habit("a", "2025-02-20", "2025-02-20", "2025-02-27", "2025-03-01", "2025-03-02", "2025-03-12", "2025-01-15")

	got := MonthlyTrends([]models.Habit{a}, 3, now)
	want := []models.MonthlyTrend{
		{Month: "Jan 2025", CompletionRate: 0, TotalCompletions: 0, TotalPossible: 0},
		{Month: "Feb 2025", CompletionRate: 22, TotalCompletions: 2, TotalPossible: 9},
		{Month: "Mar 2025", CompletionRate: 25, TotalCompletions: 3, TotalPossible: 12},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MonthlyTrends() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestMonthlyTrendsAcrossYear(t *testing.T) {
	jan := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	got := MonthlyTrends([]models.Habit{habit("a", "2024-06-01")}, 2, jan)
	if got[0].Month != "Dec 2024" || got[1].Month != "Jan 2025" {
		t.Errorf("months = %s, %s", got[0].Month, got[1].Month)
	}
	if got[0].TotalPossible != 31 || got[1].TotalPossible != 15 {
		t.Errorf("possible = %d, %d, want 31, 15", got[0].TotalPossible, got[1].TotalPossible)
	}
}

func TestTrendsEmpty(t *testing.T) {
	if got := WeeklyTrends(nil, 12, now); len(got) != 0 {
		t.Errorf("WeeklyTrends(nil) = %v", got)
	}
	if got := MonthlyTrends(nil, 6, now); len(got) != 0 {
		t.Errorf("MonthlyTrends(nil) = %v", got)
	}
	if got := DayPerformance(nil, 12, now); len(got) != 0 {
		t.Errorf("DayPerformance(nil) = %v", got)
	}
}

func TestNeverCountsBeforeCreation(t *testing.T) {
	// completions recorded before the creation day must be ignored
	h := habit("a", "2025-03-10", "2025-03-01", "2025-03-05", "2025-03-10")
	habits := []models.Habit{h}

	weeks := WeeklyTrends(habits, 2, now)
	if weeks[0].TotalPossible != 0 || weeks[0].TotalCompletions != 0 {
		t.Errorf("week before creation counted: %+v", weeks[0])
	}
	if weeks[1].TotalPossible != 3 || weeks[1].TotalCompletions != 1 {
		t.Errorf("current week = %+v", weeks[1])
	}

	months := MonthlyTrends(habits, 1, now)
	if months[0].TotalPossible != 3 || months[0].TotalCompletions != 1 {
		t.Errorf("month = %+v", months[0])
	}

	total := 0
	for _, d := range DayPerformance(habits, 12, now) {
		total += d.TotalPossible
		if d.TotalCompletions > d.TotalPossible {
			t.Errorf("%s completions exceed possible", d.Day)
		}
	}
	if total != 3 {
		t.Errorf("day performance possible = %d, want 3", total)
	}
}

func TestDayPerformance(t *testing.T) {
	h := habit("a", "2024-01-01", "2025-03-06", "2025-03-12", "2025-03-05")
	got := DayPerformance([]models.Habit{h}, 1, now)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	for i, d := range got {
		if d.DayIndex != i {
			t.Errorf("DayIndex = %d, want %d", d.DayIndex, i)
		}
		if d.TotalPossible != 1 {
			t.Errorf("%s possible = %d, want 1", d.Day, d.TotalPossible)
		}
	}
	if got[0].Day != "Sun" || got[6].Day != "Sat" {
		t.Errorf("day names = %s..%s", got[0].Day, got[6].Day)
	}
	// 2025-03-05 falls outside the 7-day window ending today
	if got[3].CompletionRate != 100 || got[4].CompletionRate != 100 {
		t.Errorf("Wed=%d Thu=%d, want 100", got[3].CompletionRate, got[4].CompletionRate)
	}
	if got[1].CompletionRate != 0 {
		t.Errorf("Mon = %d, want 0", got[1].CompletionRate)
	}
}

func TestDayPerformanceWindow(t *testing.T) {
	got := DayPerformance([]models.Habit{habit("a", "2020-01-01")}, 12, now)
	total := 0
	for _, d := range got {
		total += d.TotalPossible
		if d.TotalPossible != 12 {
			t.Errorf("%s possible = %d, want 12", d.Day, d.TotalPossible)
		}
	}
	if total != 84 {
		t.Errorf("total possible = %d, want 84", total)
	}
}

func TestBestAndWorstPerformingDays(t *testing.T) {
	h := habit("a", "2024-01-01", "2025-03-06", "2025-03-12")
	days := DayPerformance([]models.Habit{h}, 1, now)

	best := BestPerformingDays(days)
	wantBest := []string{"Wed", "Thu", "Sun", "Mon", "Tue", "Fri", "Sat"}
	for i, d := range best {
		if d.Day != wantBest[i] {
			t.Errorf("best[%d] = %s, want %s", i, d.Day, wantBest[i])
		}
	}

	worst := WorstPerformingDays(days)
	wantWorst := []string{"Sun", "Mon", "Tue", "Fri", "Sat", "Wed", "Thu"}
	for i, d := range worst {
		if d.Day != wantWorst[i] {
			t.Errorf("worst[%d] = %s, want %s", i, d.Day, wantWorst[i])
		}
	}

	if days[0].Day != "Sun" {
		t.Error("input slice was reordered")
	}
}

func TestCorrelationsIdenticalHabits(t *testing.T) {
	start := now.AddDate(0, 0, -19)
	a := models.NewHabit("a", "A", "", "#ef4444", start, false, 0)
	b := models.NewHabit("b", "B", "", "#3b82f6", start, false, 0)
	for i := 0; i < 20; i += 2 {
		key := offsetKey(-i)
		a.Completions[key] = true
		b.Completions[key] = true
	}

	got := Correlations([]models.Habit{a, b}, 12, now)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	c := got[0]
	if c.CoCompletions != 10 || c.TotalDays != 20 {
		t.Errorf("co=%d total=%d, want 10/20", c.CoCompletions, c.TotalDays)
	}
	if c.CorrelationScore <= 0.3 {
		t.Errorf("score = %v, want > 0.3", c.CorrelationScore)
	}
	if c.Habit1ID != "a" || c.Habit2Name != "B" || c.Habit2Color != "#3b82f6" {
		t.Errorf("pair metadata = %+v", c)
	}
}

func TestCorrelationsInverse(t *testing.T) {
	start := now.AddDate(0, 0, -19)
	a := models.NewHabit("a", "A", "", "#ef4444", start, false, 0)
	b := models.NewHabit("b", "B", "", "#3b82f6", start, false, 0)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			a.Completions[offsetKey(-i)] = true
		} else {
			b.Completions[offsetKey(-i)] = true
		}
	}

	got := Correlations([]models.Habit{a, b}, 12, now)
	if len(got) != 1 || got[0].CorrelationScore != -1 {
		t.Errorf("Correlations() = %+v, want score -1", got)
	}
	if ClassifyStrength(got[0].CorrelationScore) != StrengthInverse {
		t.Errorf("strength = %s", ClassifyStrength(got[0].CorrelationScore))
	}
}

func TestCorrelationsSkipsPairsWithoutCompletions(t *testing.T) {
	a := habit("a", "2025-03-01", "2025-03-10")
	b := habit("b", "2025-03-01")
	c := habit("c", "2025-03-01", "2025-03-10", "2025-03-11")

	got := Correlations([]models.Habit{a, b, c}, 12, now)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (only a-c)", len(got))
	}
	if got[0].Habit1ID != "a" || got[0].Habit2ID != "c" {
		t.Errorf("pair = %s-%s, want a-c", got[0].Habit1ID, got[0].Habit2ID)
	}
}

func TestCorrelationsTimedMinimum(t *testing.T) {
	a := habit("a", "2025-03-01", "2025-03-10")
	b := models.NewHabit("b", "B", "", "#000000", date("2025-03-01"), true, 30)
	b.Completions["2025-03-10"] = true
	b.Timed.Minutes["2025-03-10"] = 14

	if got := Correlations([]models.Habit{a, b}, 12, now); len(got) != 0 {
		t.Errorf("timed habit under minimum should have no valid completions: %+v", got)
	}
}

func TestCorrelationsEligibility(t *testing.T) {
	a := habit("a", "2024-01-01", offsetKey(0), offsetKey(-30))
	b := habit("b", offsetKey(-9), offsetKey(0))

	got := Correlations([]models.Habit{a, b}, 12, now)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].TotalDays != 10 {
		t.Errorf("TotalDays = %d, want 10", got[0].TotalDays)
	}

	// the window is weeksBack*7 days ending today
	c := habit("c", "2020-01-01", offsetKey(0))
	got = Correlations([]models.Habit{a, c}, 12, now)
	if got[0].TotalDays != 84 {
		t.Errorf("TotalDays = %d, want 84", got[0].TotalDays)
	}
}

func TestCorrelationsAlwaysDoneHabit(t *testing.T) {
	start := offsetKey(-9)
	a := habit("a", start)
	b := habit("b", start)
	for i := 0; i < 10; i++ {
		a.Completions[offsetKey(-i)] = true
		if i%3 == 0 {
			b.Completions[offsetKey(-i)] = true
		}
	}

	got := Correlations([]models.Habit{a, b}, 12, now)
	if len(got) != 1 || got[0].CorrelationScore != 0 {
		t.Errorf("Correlations() = %+v, want single zero score", got)
	}
}

func TestCorrelationsSortedByAbsoluteScore(t *testing.T) {
	start := offsetKey(-19)
	a := habit("a", start)
	b := habit("b", start)
	c := habit("c", start)
	for i := 0; i < 20; i++ {
		key := offsetKey(-i)
		if i < 10 {
			a.Completions[key] = true
		}
		if i < 8 {
			b.Completions[key] = true
		}
		if i >= 10 {
			c.Completions[key] = true
		}
	}

	got := Correlations([]models.Habit{a, b, c}, 12, now)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if math.Abs(got[i].CorrelationScore) > math.Abs(got[i-1].CorrelationScore) {
			t.Errorf("not sorted at %d: %v after %v", i, got[i].CorrelationScore, got[i-1].CorrelationScore)
		}
	}
	for _, c := range got {
		if c.CorrelationScore < -1 || c.CorrelationScore > 1 {
			t.Errorf("score out of range: %v", c.CorrelationScore)
		}
	}
	// a-c and b-c are both -1 in magnitude; a-b is +1; stable order keeps a-b first
	if got[0].Habit1ID != "a" || got[0].Habit2ID != "b" {
		t.Errorf("first pair = %s-%s, want a-b", got[0].Habit1ID, got[0].Habit2ID)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		co, c1, c2, n int
		want          float64
	}{
		{"independent", 4, 10, 8, 20, 0},
		{"slightly positive", 5, 10, 8, 20, 0.3},
		{"slightly negative", 3, 10, 8, 20, -0.3},
		{"clamped positive", 10, 10, 10, 20, 1},
		{"clamped negative", 0, 10, 10, 20, -1},
		{"full variance loss", 5, 20, 5, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.co, tt.c1, tt.c2, tt.n); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyStrength(t *testing.T) {
	tests := []struct {
		score float64
		want  Strength
	}{
		{0.31, StrengthStrong},
		{0.3, StrengthModerate},
		{0.11, StrengthModerate},
		{0.1, StrengthNeutral},
		{0, StrengthNeutral},
		{-0.1, StrengthNeutral},
		{-0.11, StrengthWeakInverse},
		{-0.3, StrengthWeakInverse},
		{-0.31, StrengthInverse},
	}
	for _, tt := range tests {
		if got := ClassifyStrength(tt.score); got != tt.want {
			t.Errorf("ClassifyStrength(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestHeatmap(t *testing.T) {
	a := habit("a", "2025-01-01", offsetKey(0), offsetKey(-1))
	b := habit("b", "2025-01-01", offsetKey(0))
	got := Heatmap([]models.Habit{a, b}, 1, now)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	last := got[6]
	if last.Day != "2025-03-12" || last.Count != 2 || last.Level != 2 {
		t.Errorf("today cell = %+v", last)
	}
	if got[5].Count != 1 || got[0].Count != 0 {
		t.Errorf("cells = %+v", got)
	}

	many := make([]models.Habit, 6)
	for i := range many {
		many[i] = habit("x", "2025-01-01", offsetKey(0))
	}
	if cell := Heatmap(many, 1, now)[6]; cell.Count != 6 || cell.Level != 4 {
		t.Errorf("level should cap at 4: %+v", cell)
	}
}

func TestSummarize(t *testing.T) {
	habits := []models.Habit{
		habit("a", "2025-01-01", offsetKey(0)),
		habit("b", "2025-01-01", offsetKey(-1)),
		habit("c", "2025-01-01", offsetKey(0)),
	}
	got := Summarize(habits, now)
	if got.TotalHabits != 3 || got.CompletedToday != 2 {
		t.Errorf("Summarize() = %+v", got)
	}
}

func TestDeterministic(t *testing.T) {
	habits := []models.Habit{
		habit("a", "2025-01-01", offsetKey(0), offsetKey(-2), offsetKey(-5)),
		habit("b", "2025-02-01", offsetKey(0), offsetKey(-1), offsetKey(-5)),
		habit("c", "2025-01-15", offsetKey(-3), offsetKey(-5)),
	}
	if !reflect.DeepEqual(Correlations(habits, 12, now), Correlations(habits, 12, now)) {
		t.Error("Correlations not deterministic")
	}
	if !reflect.DeepEqual(WeeklyTrends(habits, 12, now), WeeklyTrends(habits, 12, now)) {
		t.Error("WeeklyTrends not deterministic")
	}
	if !reflect.DeepEqual(DayPerformance(habits, 12, now), DayPerformance(habits, 12, now)) {
		t.Error("DayPerformance not deterministic")
	}
}
