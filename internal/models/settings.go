package models

// Settings represents application-wide settings
type Settings struct {
	Timezone   string `json:"timezone"`    // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	WeeksBack  int    `json:"weeks_back"`  // trailing window for weekly trends, day performance and correlations
	MonthsBack int    `json:"months_back"` // trailing window for monthly trends
	ShareDSN   string `json:"share_dsn"`   // PostgreSQL connection string for shared achievements; empty uses the local database
}
