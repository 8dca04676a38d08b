// period.go - Calendar helpers for report windows.
package credit

import "time"

// Day normalizes a time to UTC midnight of its calendar day. Daily
// reports are keyed by this value.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the half-open window [day 00:00, day+1 00:00) in UTC.
func DayWindow(day time.Time) (from, to time.Time) {
	from = Day(day)
	return from, from.AddDate(0, 0, 1)
}

// DateKey formats a day as its storage key.
func DateKey(day time.Time) string {
	return Day(day).Format("2006-01-02")
}

// ISOWeekSpan returns the Monday and Sunday of an ISO 8601 week.
func ISOWeekSpan(year, week int) (start, end time.Time) {
	// Jan 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	start = week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}
