package timetable

import (
	"fmt"
	"time"
)

const (
	WeekFirstDay = time.Monday
	DaysInWeek   = 7
)

// Week is the displayed week. Start is a Monday at 00:00 in the display location.
type Week struct {
	Start time.Time
}

// WeekContaining returns the week that holds date, computed in date's location.
func WeekContaining(date time.Time) Week {
	delta := (int(date.Weekday()) - int(WeekFirstDay) + DaysInWeek) % DaysInWeek
	return Week{Start: AddDays(StartOfDay(date), -delta)}
}

func (w Week) Location() *time.Location {
	return w.Start.Location()
}

// Day returns midnight of the i-th day of the week, i in [0, 6].
func (w Week) Day(i int) time.Time {
	return AddDays(w.Start, i)
}

func (w Week) LastDay() time.Time {
	return w.Day(DaysInWeek - 1)
}

// End is the last instant of Sunday.
func (w Week) End() time.Time {
	return EndOfDay(w.LastDay())
}

// DayIndex reports which day of the week t falls on, comparing calendar days in the display location.
func (w Week) DayIndex(t time.Time) (int, bool) {
	day := StartOfDay(t.In(w.Location()))
	for i := range DaysInWeek {
		if day.Equal(w.Day(i)) {
			return i, true
		}
	}
	return 0, false
}

func (w Week) Contains(t time.Time) bool {
	_, ok := w.DayIndex(t)
	return ok
}

func (w Week) Next() Week {
	return WeekContaining(AddDays(w.Start, DaysInWeek))
}

func (w Week) Previous() Week {
	return WeekContaining(AddDays(w.Start, -DaysInWeek))
}

// Label renders the header shown above the timetable, "DD/MM/YYYY - DD/MM/YYYY".
func (w Week) Label() string {
	return w.Start.Format("02/01/2006") + " - " + w.LastDay().Format("02/01/2006")
}

// DayTitle renders a column title such as "Mon 13th".
func (w Week) DayTitle(i int) string {
	day := w.Day(i)
	return FormatWeekdayAbbreviation(day) + " " + FormatOrdinalDay(day.Day())
}

func (w Week) Equal(other Week) bool {
	return w.Start.Equal(other.Start)
}

// String returns the ISO week, e.g. "2025-W03".
func (w Week) String() string {
	year, week := w.Start.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
