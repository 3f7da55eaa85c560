package constants

const (
	// Settings keys
	SettingTimezone   = "timezone"
	SettingWeeksBack  = "weeks_back"
	SettingMonthsBack = "months_back"
	SettingShareDSN   = "share_dsn"

	// Default Settings Values
	DefaultTimezone = "Local" // Use system local timezone by default
)
