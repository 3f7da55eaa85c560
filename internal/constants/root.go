package constants

import "time"

const (
	AppName            = "streaklit"
	DefaultKeyringUser = "share-database-connection"
	DefaultConfigPath  = "~/.config/streaklit/streaklit.db"
	DefaultConfigFile  = "~/.config/streaklit/config.json"
	Version            = "v0.3.0"

	// MinTimedMinutes is the minimum engagement a timed habit needs on a day
	// before a marked completion counts toward trends and correlations.
	// It does not depend on the habit's own target.
	MinTimedMinutes = 15

	// DefaultTargetMinutes is the live-timer target for timed habits without one.
	DefaultTargetMinutes = 30

	// Analytics windows
	DefaultWeeksBack    = 12
	DefaultMonthsBack   = 6
	DefaultHeatmapWeeks = 53

	// Window limits; larger requests are rejected.
	MaxWeeksBack  = 520
	MaxMonthsBack = 120

	// CorrelationScale flattens the standardized co-completion residual
	// before clamping it to [-1, 1].
	CorrelationScale = 3.0

	// Correlation strength thresholds
	CorrelationStrong   = 0.3
	CorrelationModerate = 0.1

	// Completion rate tiers
	TierExcellentMin = 80
	TierGoodMin      = 60
	TierFairMin      = 40

	// Share constants
	ShareCodeLength     = 8
	ShareCodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"
	ShareValidity       = 30 * 24 * time.Hour
	ShareCodeMaxRetries = 5
	ShareMessageMaxLen  = 280

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "streaklit-"
	BackupFileSuffix = ".db"

	// Server constants
	DefaultListenAddr       = "127.0.0.1:8787"
	ServerShutdownTimeout   = 5 * time.Second
	ServerReadHeaderTimeout = 10 * time.Second
)

// HabitColors is the palette offered when creating a habit. The first entry is the default.
var HabitColors = []string{
	"#ef4444",
	"#f97316",
	"#f59e0b",
	"#84cc16",
	"#10b981",
	"#06b6d4",
	"#3b82f6",
	"#6366f1",
	"#ec4899",
	"#f43f5e",
}

// StreakMilestones are celebrated streak lengths, largest first.
var StreakMilestones = []int{100, 30, 7}
