package habits

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
	"github.com/julianstephens/streaklit/internal/utils"
	"github.com/julianstephens/streaklit/internal/validation"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	List       HabitListCmd       `cmd:"" help:"List habits."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit."`
	Mark       HabitMarkCmd       `cmd:"" help:"Toggle a habit's completion for a day."`
	Time       HabitTimeCmd       `cmd:"" help:"Log minutes spent on a timed habit."`
	Activate   HabitActivateCmd   `cmd:"" help:"Resume tracking a habit."`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Pause a habit without losing its history."`
	Delete     HabitDeleteCmd     `cmd:"" help:"Delete a habit and its history."`
}

// interactive reports whether stdin is a terminal that can drive a form.
func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. Omit to fill in a form."`
	Description string `short:"d" help:"Optional description."`
	Color       string `short:"c" help:"Colour as #rrggbb (default: next palette colour)."`
	Timed       bool   `short:"t" help:"Track minutes instead of a simple done flag."`
	Target      int    `help:"Daily target in minutes for timed habits." default:"30"`
}

func (c *HabitAddCmd) Validate() error {
	if c.Color != "" {
		if err := validation.ValidateColor(c.Color); err != nil {
			return err
		}
	}
	if c.Timed {
		return validation.ValidateTargetMinutes(c.Target)
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}

	existing, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}
	if c.Color == "" {
		c.Color = constants.HabitColors[len(existing)%len(constants.HabitColors)]
	}

	if c.Name == "" {
		if !interactive() {
			return errors.New("habit name is required")
		}
		if err := c.runForm(); err != nil {
			return err
		}
	}

	c.Name = strings.TrimSpace(c.Name)
	if err := validation.ValidateHabitName(c.Name); err != nil {
		return err
	}
	if err := validation.ValidateDescription(c.Description); err != nil {
		return err
	}

	habit := models.NewHabit(uuid.NewString(), c.Name, c.Description, c.Color, now, c.Timed, c.Target)
	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	kind := "simple"
	if habit.IsTimed() {
		kind = fmt.Sprintf("timed, %d min/day", habit.Timed.Target())
	}
	ctx.Printf("Added habit: %s %s (%s)\n", cli.Swatch(habit.Color), habit.Name, kind)
	return nil
}

func (c *HabitAddCmd) runForm() error {
	target := strconv.Itoa(c.Target)
	colors := make([]huh.Option[string], len(constants.HabitColors))
	for i, color := range constants.HabitColors {
		colors[i] = huh.NewOption(cli.Swatch(color)+" "+color, color)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&c.Name).
				Validate(func(s string) error {
					return validation.ValidateHabitName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Description").
				Value(&c.Description).
				Validate(validation.ValidateDescription),
			huh.NewSelect[string]().
				Title("Colour").
				Options(colors...).
				Value(&c.Color),
			huh.NewConfirm().
				Title("Timed habit?").
				Description("Timed habits complete once you log their daily target.").
				Value(&c.Timed),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Daily target (min)").
				Value(&target).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					return validation.ValidateTargetMinutes(n)
				}),
		).WithHideFunc(func() bool { return !c.Timed }),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}
	if c.Timed {
		c.Target, _ = strconv.Atoi(target)
	}
	return nil
}

type HabitListCmd struct {
	All bool `short:"a" help:"Include inactive habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	t := cli.NewTable("ID", "Habit", "Type", "Status", "Created")
	for _, h := range habits {
		kind := "simple"
		if h.IsTimed() {
			kind = fmt.Sprintf("timed %dm", h.Timed.Target())
		}
		status := "active"
		if !h.Active {
			status = cli.Muted("inactive")
		}
		t.Row(shortID(h.ID), cli.Swatch(h.Color)+" "+h.Name, kind, status, utils.DayKey(h.CreatedAt))
	}
	ctx.Println(t.String())
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or ID."`
	Name        *string `help:"New name."`
	Description *string `short:"d" help:"New description."`
	Color       *string `short:"c" help:"New colour as #rrggbb."`
	Target      *int    `help:"New daily target in minutes (timed habits only)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if err := validation.ValidateHabitName(name); err != nil {
			return err
		}
		habit.Name = name
		updated = true
	}
	if c.Description != nil {
		if err := validation.ValidateDescription(*c.Description); err != nil {
			return err
		}
		habit.Description = *c.Description
		updated = true
	}
	if c.Color != nil {
		if err := validation.ValidateColor(*c.Color); err != nil {
			return err
		}
		habit.Color = *c.Color
		updated = true
	}
	if c.Target != nil {
		if !habit.IsTimed() {
			return fmt.Errorf("habit %q is not timed", habit.Name)
		}
		if err := validation.ValidateTargetMinutes(*c.Target); err != nil {
			return err
		}
		habit.Timed.TargetMinutes = *c.Target
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified.")
		return nil
	}
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", habit.Name)
	return nil
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day as YYYY-MM-DD (default: today)."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := resolveHabitDay(habit, c.Date, now)
	if err != nil {
		return err
	}

	u := progress.Toggle(habit, day)
	if err := ctx.Store.ApplyUpdate(u); err != nil {
		return err
	}
	if u.Completed {
		ctx.Printf("Marked %s done for %s\n", habit.Name, day)
	} else {
		ctx.Printf("Unmarked %s for %s\n", habit.Name, day)
	}
	return nil
}

type HabitTimeCmd struct {
	Habit   string `arg:"" help:"Habit name or ID."`
	Minutes int    `arg:"" help:"Minutes to add."`
	Date    string `help:"Day as YYYY-MM-DD (default: today)."`
}

func (c *HabitTimeCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := resolveHabitDay(habit, c.Date, now)
	if err != nil {
		return err
	}

	u, err := progress.LogMinutes(habit, day, c.Minutes)
	if err != nil {
		return err
	}
	if err := ctx.Store.ApplyUpdate(u); err != nil {
		return err
	}

	ctx.Printf("Logged %d min on %s for %s (%d/%d min)\n", c.Minutes, habit.Name, day, u.Minutes, habit.Timed.Target())
	if u.Completed && !habit.Completions[day] {
		ctx.Println("Daily target reached!")
	}
	return nil
}

// resolveHabitDay picks the day a write applies to. Days before the habit
// existed are refused along with future days.
func resolveHabitDay(habit models.Habit, date string, now time.Time) (string, error) {
	day, err := cli.ResolveDay(date, now)
	if err != nil {
		return "", err
	}
	if created := utils.DayKey(habit.CreatedAt.In(now.Location())); day < created {
		return "", fmt.Errorf("%s is before %s was created (%s)", day, habit.Name, created)
	}
	return day, nil
}

type HabitActivateCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitActivateCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Habit, true)
}

type HabitDeactivateCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Habit, false)
}

func setActive(ctx *cli.Context, ref string, active bool) error {
	habit, err := ctx.FindHabit(ref)
	if err != nil {
		return err
	}
	if habit.Active == active {
		ctx.Printf("%s is already %s\n", habit.Name, activeLabel(active))
		return nil
	}
	habit.Active = active
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}
	ctx.Printf("%s is now %s\n", habit.Name, activeLabel(active))
	return nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		if !interactive() {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s and %d days of history?", habit.Name, len(habit.Completions))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}
