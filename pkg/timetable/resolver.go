package timetable

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/teambition/rrule-go"
)

var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrNegativeDuration   = errors.New("negative duration")
	ErrUnknownRecurrence  = errors.New("unknown recurrence type")
)

// Resolve turns raw events into the occurrences that fall into week. Records that cannot be resolved
// are skipped. The result is in no particular order; all times are in the week's location.
func Resolve(rawEvents []event.Event, week Week) []Occurrence {
	occurrences := make([]Occurrence, 0, len(rawEvents))
	for _, raw := range rawEvents {
		if err := checkResolvable(raw); err != nil {
			continue
		}

		var start time.Time
		var ok bool
		switch raw.Recurrence {
		case event.Once:
			start, ok = resolveOnce(raw, week)
		case event.Weekly:
			start, ok = resolveWeekly(raw, week)
		}
		if !ok {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Event:     raw,
			StartTime: start,
			EndTime:   start.Add(raw.Duration),
		})
	}
	return occurrences
}

func checkResolvable(raw event.Event) error {
	switch {
	case raw.StartTime.IsZero():
		return ErrMalformedTimestamp
	case raw.Duration < 0:
		return ErrNegativeDuration
	case !raw.Recurrence.Valid():
		return ErrUnknownRecurrence
	}
	return nil
}

// resolveOnce keeps the event when its start day is one of the week's days.
func resolveOnce(raw event.Event, week Week) (time.Time, bool) {
	start := raw.StartTime.In(week.Location())
	return start, week.Contains(start)
}

// resolveWeekly finds the instance of the weekly series inside week. The series keeps the wall clock
// time of the original start in the display location.
func resolveWeekly(raw event.Event, week Week) (time.Time, bool) {
	start := raw.StartTime.In(week.Location())
	if start.After(week.End()) {
		return time.Time{}, false
	}
	start = latestInstanceBefore(start, week.Start)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: start,
	})
	if err != nil {
		log.Debugf("cannot build weekly rule for event %d: %v", raw.Id, err)
		return time.Time{}, false
	}

	instances := rule.Between(week.Start, week.End(), true)
	if len(instances) == 0 {
		return time.Time{}, false
	}
	// the rule works at second precision
	return instances[0].Add(time.Duration(start.Nanosecond())), true
}

// latestInstanceBefore moves start forward by whole weeks to the last instance whose day is at or
// before the day of limit. The wall clock time is kept.
func latestInstanceBefore(start time.Time, limit time.Time) time.Time {
	weeks := (civilDay(limit) - civilDay(start)) / 7
	if weeks <= 0 {
		return start
	}
	return start.AddDate(0, 0, int(7*weeks))
}

// civilDay counts days since 1970-01-01 for the calendar date of t in its own location.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60
