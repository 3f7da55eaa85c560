package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/cli/backups"
	"github.com/julianstephens/streaklit/internal/cli/habits"
	"github.com/julianstephens/streaklit/internal/cli/reports"
	"github.com/julianstephens/streaklit/internal/cli/settings"
	"github.com/julianstephens/streaklit/internal/cli/shares"
	"github.com/julianstephens/streaklit/internal/cli/system"
	"github.com/julianstephens/streaklit/internal/constants"
	apperrors "github.com/julianstephens/streaklit/internal/errors"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Habit store path. A .json path uses the JSON store, anything else SQLite." type:"path" default:"${config_path}" env:"STREAKLIT_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"STREAKLIT_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize streaklit storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored habits for inconsistent data."`
	Serve    system.ServeCmd    `cmd:"" help:"Serve the read-only analytics and share API."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the share database secret in the OS keyring."`

	Habit        habits.HabitCmd         `cmd:"" help:"Manage habits and record progress."`
	Today        reports.TodayCmd        `cmd:"" default:"1" help:"Show today's habits."`
	Stats        reports.StatsCmd        `cmd:"" help:"Show streaks and completion rates."`
	Trends       reports.TrendsCmd       `cmd:"" help:"Show weekly or monthly completion trends."`
	Days         reports.DaysCmd         `cmd:"" help:"Show completion rate by weekday."`
	Correlations reports.CorrelationsCmd `cmd:"" help:"Show which habits tend to be done together."`
	Heatmap      reports.HeatmapCmd      `cmd:"" help:"Show a calendar heatmap of completions."`

	Share    shares.ShareCmd      `cmd:"" help:"Share habit achievements."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage store backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
}

// storeless commands run before, or without, an initialized store.
var storeless = []string{"init", "keyring"}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, trends and correlations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultConfigFile),
		kong.Vars{
			"version":       constants.Version,
			"config_path":   constants.DefaultConfigPath,
			"listen_addr":   constants.DefaultListenAddr,
			"heatmap_weeks": strconv.Itoa(constants.DefaultHeatmapWeeks),
		},
	)

	serving := strings.HasPrefix(ctx.Command(), "serve")
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
		JSON:      serving,
		Stderr:    serving,
	}); err != nil {
		apperrors.Fatal(err)
	}

	var store storage.Provider
	if strings.EqualFold(filepath.Ext(CLI.Config), ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = sqlite.NewStore(CLI.Config)
	}
	defer store.Close()

	if !isStoreless(ctx.Command()) {
		if err := store.Load(); err != nil {
			store.Close()
			apperrors.Fatal(err)
		}
	}

	appCtx := &cli.Context{Store: store}
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

func isStoreless(command string) bool {
	for _, name := range storeless {
		if command == name || strings.HasPrefix(command, name+" ") {
			return true
		}
	}
	return false
}
