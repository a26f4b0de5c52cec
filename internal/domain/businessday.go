// internal/domain/businessday.go
package domain

import "time"

// DayLayout is the layout of date partition directories (DD.MM.YYYY).
const DayLayout = "02.01.2006"

// BusinessDay returns the effective date used for partitioning: now shifted by
// offsetHours and truncated to midnight in now's location. Items arriving after
// the evening cutoff are filed under the next calendar day.
func BusinessDay(now time.Time, offsetHours int) time.Time {
	shifted := now.Add(time.Duration(offsetHours) * time.Hour)
	y, m, d := shifted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, shifted.Location())
}

// FormatDay renders a day as a partition directory name.
func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}

// ParseDay parses a partition directory name.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.Local)
}
