package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekContaining(t *testing.T) {
	loc := warsaw(t)
	monday := time.Date(2025, time.January, 13, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		date time.Time
	}{
		{"monday midnight", monday},
		{"wednesday afternoon", time.Date(2025, time.January, 15, 14, 0, 0, 0, loc)},
		{"sunday late evening", time.Date(2025, time.January, 19, 23, 59, 59, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := WeekContaining(tt.date)

			assert.True(t, week.Start.Equal(monday))
			assert.Equal(t, loc, week.Location())
		})
	}
}

func TestWeek_Presentation(t *testing.T) {
	week := WeekContaining(time.Date(2025, time.January, 15, 9, 0, 0, 0, warsaw(t)))

	assert.Equal(t, "13/01/2025 - 19/01/2025", week.Label())
	assert.Equal(t, "Mon 13th", week.DayTitle(0))
	assert.Equal(t, "Sat 18th", week.DayTitle(5))
	assert.Equal(t, "Sun 19th", week.DayTitle(6))
	assert.Equal(t, "2025-W03", week.String())
}

func TestWeek_Navigation(t *testing.T) {
	loc := warsaw(t)
	week := WeekContaining(time.Date(2025, time.March, 26, 9, 0, 0, 0, loc))

	next := week.Next()
	previous := week.Previous()

	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, loc), next.Start)
	assert.Equal(t, time.Date(2025, time.March, 17, 0, 0, 0, 0, loc), previous.Start)
	assert.True(t, next.Previous().Equal(week))
	// the week of the DST change is one hour shorter
	assert.Equal(t, 7*24*time.Hour-time.Hour, next.Start.Sub(week.Start))
}

func TestWeek_DayIndex(t *testing.T) {
	loc := warsaw(t)
	week := WeekContaining(time.Date(2025, time.January, 13, 0, 0, 0, 0, loc))

	index, ok := week.DayIndex(time.Date(2025, time.January, 13, 23, 30, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 1, index, "23:30 UTC on Monday is already Tuesday in Warsaw")

	_, ok = week.DayIndex(time.Date(2025, time.January, 20, 0, 0, 0, 0, loc))
	assert.False(t, ok)
	_, ok = week.DayIndex(time.Date(2025, time.January, 12, 23, 59, 0, 0, loc))
	assert.False(t, ok)
	assert.True(t, week.Contains(week.End()))
}
