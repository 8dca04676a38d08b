package credit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/credit-engine/credit"
)

func TestDay_NormalizesToUTCMidnight(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	in := time.Date(2025, time.March, 10, 22, 15, 4, 0, est) // 03:15 UTC next day

	day := credit.Day(in)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), day)
}

func TestDayWindow_HalfOpen(t *testing.T) {
	from, to := credit.DayWindow(time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), to)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2025-03-10", credit.DateKey(time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC)))
}

func TestISOWeekSpan(t *testing.T) {
	// Known tricky values: week 1 of 2015 starts in December 2014,
	// and Jan 4 is always inside week 1.
	tests := []struct {
		year, week int
		start, end time.Time
	}{
		{2015, 1, time.Date(2014, time.December, 29, 0, 0, 0, 0, time.UTC), time.Date(2015, time.January, 4, 0, 0, 0, 0, time.UTC)},
		{2021, 33, time.Date(2021, time.August, 16, 0, 0, 0, 0, time.UTC), time.Date(2021, time.August, 22, 0, 0, 0, 0, time.UTC)},
		{2026, 1, time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		start, end := credit.ISOWeekSpan(tt.year, tt.week)
		assert.Equal(t, tt.start, start, "%d-W%02d start", tt.year, tt.week)
		assert.Equal(t, tt.end, end, "%d-W%02d end", tt.year, tt.week)

		// Round-trip against the standard library.
		y, w := start.ISOWeek()
		assert.Equal(t, tt.year, y)
		assert.Equal(t, tt.week, w)
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, time.Sunday, end.Weekday())
	}
}
