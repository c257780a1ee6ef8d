package timetable

import (
	"strconv"
	"time"
)

// All helpers work on the wall clock of t's location. Convert to the display location first.

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

func StartOfNextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// DayOfWeek numbers days from Monday (0) to Sunday (6).
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// AddDays moves by calendar days, keeping the wall clock time across DST changes.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func FormatOrdinalDay(day int) string {
	suffix := "th"
	switch day % 100 {
	case 11, 12, 13:
	default:
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(day) + suffix
}

func FormatWeekdayAbbreviation(t time.Time) string {
	return t.Format("Mon")
}

func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
