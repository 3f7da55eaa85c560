package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streaklit/internal/backup"
	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
	"github.com/julianstephens/streaklit/internal/utils"
	"github.com/julianstephens/streaklit/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	warning bool
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", run: checkSchemaVersion},
	{name: "Timezone", run: checkTimezone},
	{name: "Data validation", run: checkValidation},
	{name: "Share storage", run: checkShareStorage, warning: true},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := 0
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed++
		}
	}

	ctx.Println()
	if failed > 0 {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if db := ctx.LocalDB(); db != nil {
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// JSON documents carry no schema version
		return nil
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d; run 'streaklit migrate'", current, latest)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("timezone %q cannot be loaded: %w", settings.Timezone, err)
	}
	if now := time.Now(); now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}
	result := validation.New().ValidateHabits(habits, now)
	if result.HasProblems() {
		return fmt.Errorf("%d problem(s); run 'streaklit validate' for details", len(result.Problems))
	}
	return nil
}

func checkShareStorage(ctx *cli.Context) error {
	svc, err := ctx.Shares(context.Background())
	if err != nil {
		if errors.Is(err, share.ErrUnavailable) {
			return fmt.Errorf("sharing unavailable: %w", err)
		}
		return err
	}
	defer ctx.CloseShares()
	_, err = svc.Purge(context.Background())
	return err
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'streaklit backup create'")
	}
	return nil
}
