package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderICS(t *testing.T) {
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Id: 1, Title: "Gym", StartTime: monday, Duration: time.Hour, Recurrence: Weekly, Visibility: Public},
		{Id: 2, Title: "Dentist", StartTime: monday.Add(48 * time.Hour), Duration: 30 * time.Minute, Recurrence: Once, Visibility: Private},
	}

	rendered := RenderICS(events, now)

	assert.Contains(t, rendered, "BEGIN:VCALENDAR")
	assert.Contains(t, rendered, "UID:event-1@socialcal")
	assert.Contains(t, rendered, "SUMMARY:Gym")
	assert.Contains(t, rendered, "SUMMARY:Dentist")
	assert.Contains(t, rendered, "DTSTART:20250113T090000Z")
	assert.Contains(t, rendered, "CLASS:PUBLIC")
	assert.Contains(t, rendered, "CLASS:PRIVATE")
	assert.Equal(t, 1, strings.Count(rendered, "RRULE:FREQ=WEEKLY"))
}

func TestParseICS_RoundTrip(t *testing.T) {
	events := []Event{
		{Id: 1, Title: "Gym", StartTime: monday, Duration: time.Hour, Recurrence: Weekly, Visibility: Public},
		{Id: 2, Title: "Dentist", StartTime: monday.Add(48 * time.Hour), Duration: 30 * time.Minute, Recurrence: Once, Visibility: Private},
	}

	parsed, skipped, err := ParseICS(strings.NewReader(RenderICS(events, monday)))

	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, parsed, 2)
	for i, want := range events {
		got := parsed[i]
		assert.Equal(t, want.Title, got.Title)
		assert.True(t, want.StartTime.Equal(got.StartTime))
		assert.Equal(t, want.Duration, got.Duration)
		assert.Equal(t, want.Recurrence, got.Recurrence)
		assert.Equal(t, want.Visibility, got.Visibility)
	}
}

func TestParseICS_SkipsUnsupportedEvents(t *testing.T) {
	document := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:daily",
		"DTSTART:20250113T090000Z",
		"DTEND:20250113T100000Z",
		"SUMMARY:Daily",
		"RRULE:FREQ=DAILY",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:plain",
		"DTSTART:20250114T090000Z",
		"SUMMARY:" + strings.Repeat("x", MaxTitleLength+20),
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	parsed, skipped, err := ParseICS(strings.NewReader(document))

	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, parsed, 1)
	assert.Len(t, parsed[0].Title, MaxTitleLength)
	assert.Equal(t, time.Hour, parsed[0].Duration, "missing end defaults to an hour")
	assert.Equal(t, Private, parsed[0].Visibility)
}

func TestClassifyRecurrence(t *testing.T) {
	monday := time.Date(2025, time.January, 13, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		lines []string
		want  RecurrenceType
		ok    bool
	}{
		{"no rule", nil, Once, true},
		{"plain weekly", []string{"RRULE:FREQ=WEEKLY"}, Weekly, true},
		{"weekly on the start weekday", []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, Weekly, true},
		{"weekly on another weekday", []string{"RRULE:FREQ=WEEKLY;BYDAY=WE"}, "", false},
		{"bare rule value", []string{"FREQ=WEEKLY;INTERVAL=1"}, Weekly, true},
		{"exdate lines are ignored", []string{"EXDATE:20250120T090000Z", "RRULE:FREQ=WEEKLY"}, Weekly, true},
		{"every second week", []string{"RRULE:FREQ=WEEKLY;INTERVAL=2"}, "", false},
		{"bounded by count", []string{"RRULE:FREQ=WEEKLY;COUNT=5"}, "", false},
		{"bounded by until", []string{"RRULE:FREQ=WEEKLY;UNTIL=20250301T000000Z"}, "", false},
		{"several weekdays", []string{"RRULE:FREQ=WEEKLY;BYDAY=MO,WE"}, "", false},
		{"daily", []string{"RRULE:FREQ=DAILY"}, "", false},
		{"two rules", []string{"RRULE:FREQ=WEEKLY", "RRULE:FREQ=WEEKLY;BYDAY=FR"}, "", false},
		{"garbage", []string{"RRULE:FREQ=SOMETIMES"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyRecurrence(tt.lines, monday)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
