package forecasting

import "time"

// StartOfDayUTC returns UTC midnight of the calendar day containing t.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the half-open [start, end) window of the UTC calendar
// day containing t. An instant exactly at the next midnight falls in the
// next day's window, never this one.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := StartOfDayUTC(t)
	return start, start.AddDate(0, 0, 1)
}

// RangeWindow returns the half-open window covering the calendar days from
// startDate through endDate inclusive: [startDate 00:00, endDate+1d 00:00).
func RangeWindow(startDate, endDate time.Time) (time.Time, time.Time) {
	return StartOfDayUTC(startDate), StartOfDayUTC(endDate).AddDate(0, 0, 1)
}
