package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// WeekLabelFormat labels weekly trend buckets, e.g. "Mar 3"
	WeekLabelFormat = "Jan 2"

	// MonthLabelFormat labels monthly trend buckets, e.g. "Mar 2025"
	MonthLabelFormat = "Jan 2006"
)

// DayNames are the short weekday names indexed by time.Weekday (0=Sunday).
var DayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
