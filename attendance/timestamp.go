package attendance

import "time"

// TimestampLayout is MM/DD/YYYY HH:MM:SS on a 24-hour clock.
const TimestampLayout = "01/02/2006 15:04:05"

// FormatTimestamp renders t in TimestampLayout using t's own location.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
