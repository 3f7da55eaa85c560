package shares

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/models"
)

type ShareCmd struct {
	Create ShareCreateCmd `cmd:"" help:"Publish a snapshot of a habit's stats under a share code."`
	Get    ShareGetCmd    `cmd:"" help:"Look up a shared achievement."`
	Purge  SharePurgeCmd  `cmd:"" help:"Delete expired shares."`
}

type ShareCreateCmd struct {
	Habit   string `arg:"" help:"Habit name or ID."`
	Message string `short:"m" help:"Optional message shown with the snapshot."`
}

func (c *ShareCreateCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	svc, err := ctx.Shares(context.Background())
	if err != nil {
		return err
	}
	defer ctx.CloseShares()

	a, err := svc.Create(context.Background(), habit, c.Message, now)
	if err != nil {
		return err
	}

	ctx.Printf("Share code: %s\n", cli.Title(a.Code))
	ctx.Printf("Expires:    %s\n", a.ExpiresAt.In(now.Location()).Format("2006-01-02 15:04"))
	return nil
}

type ShareGetCmd struct {
	Code string `arg:"" help:"Share code."`
}

func (c *ShareGetCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	svc, err := ctx.Shares(context.Background())
	if err != nil {
		return err
	}
	defer ctx.CloseShares()

	a, err := svc.Get(context.Background(), c.Code)
	if err != nil {
		return fmt.Errorf("share %s: %w", c.Code, err)
	}
	printAchievement(ctx, a, now)
	return nil
}

func printAchievement(ctx *cli.Context, a models.SharedAchievement, now time.Time) {
	ctx.Println(cli.Swatch(a.HabitColor) + " " + cli.Title(a.HabitName))
	if a.Message != nil {
		ctx.Printf("  %q\n", *a.Message)
	}
	t := cli.NewTable("Current", "Longest", "Total", "Rate")
	t.Row(
		fmt.Sprintf("%d", a.CurrentStreak),
		fmt.Sprintf("%d", a.LongestStreak),
		fmt.Sprintf("%d", a.TotalCompletions),
		cli.Rate(a.CompletionRate),
	)
	ctx.Println(t.String())
	loc := now.Location()
	ctx.Println(cli.Muted(fmt.Sprintf("Shared %s, expires %s",
		a.CreatedAt.In(loc).Format("2006-01-02"), a.ExpiresAt.In(loc).Format("2006-01-02"))))
}

type SharePurgeCmd struct{}

func (c *SharePurgeCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Shares(context.Background())
	if err != nil {
		return err
	}
	defer ctx.CloseShares()

	n, err := svc.Purge(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("Deleted %d expired shares\n", n)
	return nil
}
