package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/streaklit/internal/backup"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/utils"
	"github.com/julianstephens/streaklit/internal/validation"
)

// Context is passed to every command's Run method.
type Context struct {
	Store storage.Provider
	Out   io.Writer
	// Clock overrides time.Now in tests.
	Clock func() time.Time

	shares *share.Service
}

// dbProvider is implemented by stores backed by a SQL database.
type dbProvider interface {
	GetDB() *sql.DB
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes formatted output for the user.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line of output for the user.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Now returns the current instant in the configured timezone, along with
// the settings it was resolved from. Every command computes with this one
// instant so that day boundaries agree across a single run.
func (c *Context) Now() (time.Time, models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return time.Time{}, models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("invalid timezone in settings, using local", "timezone", settings.Timezone)
		loc = time.Local
	}
	return clock().In(loc), settings, nil
}

// LocalDB returns the store's database connection, or nil for file stores.
func (c *Context) LocalDB() *sql.DB {
	if p, ok := c.Store.(dbProvider); ok {
		return p.GetDB()
	}
	return nil
}

// Shares opens the share service on first use.
func (c *Context) Shares(ctx context.Context) (*share.Service, error) {
	if c.shares != nil {
		return c.shares, nil
	}
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	var opts []share.Option
	if c.Clock != nil {
		opts = append(opts, share.WithClock(c.Clock))
	}
	svc, err := share.Open(ctx, settings, c.LocalDB(), opts...)
	if err != nil {
		return nil, err
	}
	c.shares = svc
	return svc, nil
}

// CloseShares releases a share service opened by Shares.
func (c *Context) CloseShares() {
	if c.shares == nil {
		return
	}
	if err := c.shares.Close(); err != nil {
		logger.Warn("failed to close share service", "error", err)
	}
	c.shares = nil
}

// FindHabit resolves a habit by id, falling back to a case-insensitive name match.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, err := c.Store.GetHabit(ref); err == nil {
		return h, nil
	}
	h, err := c.Store.GetHabitByName(ref)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, err)
	}
	return h, nil
}

// ResolveDay returns the day key for --date, defaulting to today. Future days
// and malformed keys are rejected.
func ResolveDay(date string, now time.Time) (string, error) {
	if date == "" {
		return utils.DayKey(now), nil
	}
	if err := validation.ValidateDay(date, now); err != nil {
		return "", err
	}
	return date, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
