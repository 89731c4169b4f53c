package util

import "time"

// TimeLayout is how timestamps are rendered in every response
const TimeLayout = "2006-01-02 15:04:05"

// Now returns the current UTC time with second precision
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
