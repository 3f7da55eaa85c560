// Package reports holds the read-only commands that render statistics and
// analytics for the habits in the store.
package reports

import (
	"fmt"
	"strings"

	"github.com/julianstephens/streaklit/internal/analytics"
	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/stats"
	"github.com/julianstephens/streaklit/internal/utils"
	"github.com/julianstephens/streaklit/internal/validation"
)

// window returns flag when set, otherwise the settings value.
func window(flag, fallback, max int) (int, error) {
	if flag == 0 {
		return fallback, nil
	}
	if err := validation.ValidateWindow(flag, max); err != nil {
		return 0, err
	}
	return flag, nil
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No active habits. Add one with 'streaklit habit add'.")
		return nil
	}

	today := utils.DayKey(now)
	t := cli.NewTable("", "Habit", "Progress", "Streak")
	for _, h := range habits {
		progressCell := ""
		if h.IsTimed() {
			minutes := h.Timed.MinutesOn(today)
			progressCell = fmt.Sprintf("%s %d/%d min", cli.Bar(minutes, h.Timed.Target(), 10), minutes, h.Timed.Target())
		}
		st := stats.Calculate(h, now)
		t.Row(cli.Check(stats.IsCompletedToday(h, now)), cli.Swatch(h.Color)+" "+h.Name, progressCell, fmt.Sprintf("%d", st.CurrentStreak))
	}

	overview := analytics.Summarize(habits, now)
	ctx.Println(cli.Title(fmt.Sprintf("Today, %s", now.Format("Mon Jan 2"))))
	ctx.Println(t.String())
	ctx.Printf("%d/%d completed\n", overview.CompletedToday, overview.TotalHabits)
	return nil
}

type StatsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all active habits)."`
	All   bool   `short:"a" help:"Include inactive habits."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else if habits, err = ctx.Store.GetAllHabits(c.All); err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	t := cli.NewTable("Habit", "Current", "Longest", "Total", "Rate", "Milestone")
	for _, h := range habits {
		st := stats.Calculate(h, now)
		milestone := ""
		if m := stats.Milestone(st.CurrentStreak); m > 0 {
			milestone = fmt.Sprintf("%d-day", m)
		}
		t.Row(
			cli.Swatch(h.Color)+" "+h.Name,
			fmt.Sprintf("%d", st.CurrentStreak),
			fmt.Sprintf("%d", st.LongestStreak),
			fmt.Sprintf("%d", st.TotalCompletions),
			cli.Rate(st.CompletionRate),
			milestone,
		)
	}
	ctx.Println(t.String())
	return nil
}

type TrendsCmd struct {
	Weekly  WeeklyTrendsCmd  `cmd:"" default:"1" help:"Completion rate per week."`
	Monthly MonthlyTrendsCmd `cmd:"" help:"Completion rate per month."`
}

type WeeklyTrendsCmd struct {
	Weeks int  `short:"w" help:"Number of weeks (default: weeks_back setting)."`
	All   bool `short:"a" help:"Include inactive habits."`
}

func (c *WeeklyTrendsCmd) Run(ctx *cli.Context) error {
	now, settings, err := ctx.Now()
	if err != nil {
		return err
	}
	weeks, err := window(c.Weeks, settings.WeeksBack, constants.MaxWeeksBack)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	trends := analytics.WeeklyTrends(habits, weeks, now)
	if len(trends) == 0 {
		ctx.Println("No habits to report on.")
		return nil
	}
	t := cli.NewTable("Week of", "Done", "Possible", "Rate", "")
	for _, w := range trends {
		t.Row(w.Week, fmt.Sprintf("%d", w.TotalCompletions), fmt.Sprintf("%d", w.TotalPossible), cli.Rate(w.CompletionRate), cli.Bar(w.CompletionRate, 100, 20))
	}
	ctx.Println(t.String())
	return nil
}

type MonthlyTrendsCmd struct {
	Months int  `short:"m" help:"Number of months (default: months_back setting)."`
	All    bool `short:"a" help:"Include inactive habits."`
}

func (c *MonthlyTrendsCmd) Run(ctx *cli.Context) error {
	now, settings, err := ctx.Now()
	if err != nil {
		return err
	}
	months, err := window(c.Months, settings.MonthsBack, constants.MaxMonthsBack)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	trends := analytics.MonthlyTrends(habits, months, now)
	if len(trends) == 0 {
		ctx.Println("No habits to report on.")
		return nil
	}
	t := cli.NewTable("Month", "Done", "Possible", "Rate", "")
	for _, m := range trends {
		t.Row(m.Month, fmt.Sprintf("%d", m.TotalCompletions), fmt.Sprintf("%d", m.TotalPossible), cli.Rate(m.CompletionRate), cli.Bar(m.CompletionRate, 100, 20))
	}
	ctx.Println(t.String())
	return nil
}

type DaysCmd struct {
	Weeks int  `short:"w" help:"Number of weeks (default: weeks_back setting)."`
	All   bool `short:"a" help:"Include inactive habits."`
}

func (c *DaysCmd) Run(ctx *cli.Context) error {
	now, settings, err := ctx.Now()
	if err != nil {
		return err
	}
	weeks, err := window(c.Weeks, settings.WeeksBack, constants.MaxWeeksBack)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	days := analytics.DayPerformance(habits, weeks, now)
	if len(days) == 0 {
		ctx.Println("No habits to report on.")
		return nil
	}
	t := cli.NewTable("Day", "Done", "Possible", "Rate", "")
	for _, d := range days {
		t.Row(d.Day, fmt.Sprintf("%d", d.TotalCompletions), fmt.Sprintf("%d", d.TotalPossible), cli.Rate(d.CompletionRate), cli.Bar(d.CompletionRate, 100, 20))
	}
	ctx.Println(t.String())
	ctx.Printf("Best:  %s\n", dayNames(analytics.BestPerformingDays(days), 3))
	ctx.Printf("Worst: %s\n", dayNames(analytics.WorstPerformingDays(days), 3))
	return nil
}

func dayNames(days []models.DayPerformance, n int) string {
	names := make([]string, 0, n)
	for i := 0; i < len(days) && i < n; i++ {
		names = append(names, days[i].Day)
	}
	return strings.Join(names, ", ")
}

type CorrelationsCmd struct {
	Weeks int  `short:"w" help:"Number of weeks (default: weeks_back setting)."`
	Limit int  `short:"n" help:"Show at most this many pairs (0 for all)." default:"10"`
	All   bool `short:"a" help:"Include inactive habits."`
}

func (c *CorrelationsCmd) Run(ctx *cli.Context) error {
	now, settings, err := ctx.Now()
	if err != nil {
		return err
	}
	weeks, err := window(c.Weeks, settings.WeeksBack, constants.MaxWeeksBack)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	corrs := analytics.Correlations(habits, weeks, now)
	if len(corrs) == 0 {
		ctx.Println("Not enough data to correlate habits yet.")
		return nil
	}
	if c.Limit > 0 && len(corrs) > c.Limit {
		corrs = corrs[:c.Limit]
	}

	t := cli.NewTable("Habit", "Habit", "Score", "Together", "Days", "Strength")
	for _, corr := range corrs {
		t.Row(
			cli.Swatch(corr.Habit1Color)+" "+corr.Habit1Name,
			cli.Swatch(corr.Habit2Color)+" "+corr.Habit2Name,
			fmt.Sprintf("%+.2f", corr.CorrelationScore),
			fmt.Sprintf("%d", corr.CoCompletions),
			fmt.Sprintf("%d", corr.TotalDays),
			cli.Strength(analytics.ClassifyStrength(corr.CorrelationScore)),
		)
	}
	ctx.Println(t.String())
	return nil
}

type HeatmapCmd struct {
	Weeks int  `short:"w" help:"Number of weeks to show." default:"${heatmap_weeks}"`
	All   bool `short:"a" help:"Include inactive habits."`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	weeks, err := window(c.Weeks, constants.DefaultHeatmapWeeks, constants.MaxWeeksBack)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	days := analytics.Heatmap(habits, weeks, now)
	if len(days) == 0 {
		return nil
	}
	ctx.Println(cli.Title(fmt.Sprintf("%s to %s", days[0].Day, days[len(days)-1].Day)))
	ctx.Println(renderHeatmap(days))

	legend := make([]string, 0, 5)
	for level := 0; level <= 4; level++ {
		legend = append(legend, cli.HeatCell(level))
	}
	ctx.Printf("%s %s %s\n", cli.Muted("less"), strings.Join(legend, " "), cli.Muted("more"))
	return nil
}

// renderHeatmap lays days out in columns of seven, oldest first, labelling
// each row by the weekday it holds.
func renderHeatmap(days []models.HeatmapDay) string {
	var b strings.Builder
	for row := 0; row < 7 && row < len(days); row++ {
		label := "   "
		if d, err := utils.ParseDayKey(days[row].Day); err == nil {
			label = constants.DayNames[d.Weekday()]
		}
		b.WriteString(cli.Muted(label))
		for i := row; i < len(days); i += 7 {
			b.WriteString(" ")
			b.WriteString(cli.HeatCell(days[i].Level))
		}
		if row < 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
